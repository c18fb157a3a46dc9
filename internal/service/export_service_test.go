package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFiles struct {
	files map[string][]byte
	types map[string]string
}

func (m *memoryFiles) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	m.files[filename] = file
	m.types[filename] = contentType
	return "https://files.example.com/" + filename, nil
}

func TestExportServiceRender(t *testing.T) {
	st := openTestStore(t)
	svc := NewExportService(nil)

	_, err := svc.Render(st)
	assert.ErrorIs(t, err, domain.ErrNoActivePlan)

	_, err = NewPlanService(NewLLMPlanGenerator(&fakeModel{reply: validPlanJSON})).Generate(context.Background(), st, testProfile())
	require.NoError(t, err)

	doc, err := svc.Render(st)
	require.NoError(t, err)
	assert.Equal(t, "Meera_Fitness_Plan.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))
}

func TestExportServiceArchive(t *testing.T) {
	st := openTestStore(t)
	_, err := NewPlanService(NewLLMPlanGenerator(&fakeModel{reply: validPlanJSON})).Generate(context.Background(), st, testProfile())
	require.NoError(t, err)

	_, _, err = NewExportService(nil).Archive(context.Background(), st)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	files := &memoryFiles{files: map[string][]byte{}, types: map[string]string{}}
	url, doc, err := NewExportService(files).Archive(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://files.example.com/exports/"))
	assert.True(t, strings.HasSuffix(url, "/Meera_Fitness_Plan.pdf"))
	require.Len(t, files.files, 1)
	for key, data := range files.files {
		assert.Equal(t, doc.Data, data)
		assert.Equal(t, "application/pdf", files.types[key])
	}
}
