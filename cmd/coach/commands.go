package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/client"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/render"
	"github.com/mansoorceksport/fitcoach/internal/speech"
)

const termWidth = 80

// loadProfile reads and validates a profile JSON file
func loadProfile(path string) (domain.UserProfile, error) {
	var profile domain.UserProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}
	if err := profile.Validate(); err != nil {
		return profile, err
	}
	return profile, nil
}

func parseTab(s string) (render.Tab, error) {
	for _, tab := range render.Tabs {
		if strings.EqualFold(s, tab.String()) {
			return tab, nil
		}
	}
	return render.TabWorkout, fmt.Errorf("%w: %q", domain.ErrUnknownSection, s)
}

func runGenerate(ctx context.Context, args []string) error {
	fs := newFlagSet("generate")
	path := fs.String("profile", "profile.json", "profile JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := loadProfile(*path)
	if err != nil {
		return err
	}
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Generating your personalized plan...")
	if _, err := c.GeneratePlan(ctx, profile); err != nil {
		return err
	}
	return printPlan(ctx, c, render.TabWorkout)
}

func runRegenerate(ctx context.Context, args []string) error {
	if err := newFlagSet("regenerate").Parse(args); err != nil {
		return err
	}
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Regenerating your plan...")
	if _, err := c.RegeneratePlan(ctx); err != nil {
		return err
	}
	return printPlan(ctx, c, render.TabWorkout)
}

func runShow(ctx context.Context, args []string) error {
	fs := newFlagSet("show")
	tabName := fs.String("tab", "workout", "workout, diet or motivation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tab, err := parseTab(*tabName)
	if err != nil {
		return err
	}
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}
	return printPlan(ctx, c, tab)
}

func printPlan(ctx context.Context, c *client.Client, tab render.Tab) error {
	summary, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	theme := render.NewTheme(summary.DarkMode)

	fmt.Println(render.Summary(summary, termWidth, theme))
	fmt.Println()
	fmt.Println(render.TabBar(tab, theme))
	fmt.Println(render.Body(summary.FitnessPlan, tab, termWidth, theme))
	return nil
}

func runSaved(ctx context.Context, args []string) error {
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}

	action := "list"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "list":
		plans, err := c.SavedPlans(ctx)
		if err != nil {
			return err
		}
		fmt.Println(render.SavedPlans(plans, termWidth, render.NewTheme(false)))
		return nil

	case "save":
		entry, err := c.SaveCurrentPlan(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Plan saved successfully! (%s)\n", entry.UserData.Name)
		return nil

	case "delete", "load":
		if len(args) < 2 {
			return fmt.Errorf("usage: coach saved %s N", action)
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		if action == "delete" {
			if err := c.DeleteSavedPlan(ctx, index); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted saved plan %d\n", index)
			return nil
		}
		view, err := c.LoadSavedPlan(ctx, index)
		if err != nil {
			return err
		}
		if view.UserData != nil {
			fmt.Printf("✓ Loaded %s's plan\n", view.UserData.Name)
		}
		return nil
	}

	return fmt.Errorf("unknown saved action %q", action)
}

func runImage(ctx context.Context, args []string) error {
	fs := newFlagSet("image")
	exercise := fs.String("exercise", "", "exercise from the current plan as DAY:N, both 1-based")
	meal := fs.String("meal", "", "meal from the current plan, e.g. breakfast")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		c     *client.Client
		label string
		kind  = client.ExerciseImage
	)
	if *exercise != "" || *meal != "" {
		var err error
		c, err = sessionClient(ctx)
		if err != nil {
			return err
		}
		state, err := c.State(ctx)
		if err != nil {
			return err
		}
		label, kind, err = imageTarget(state.State.FitnessPlan, *exercise, *meal)
		if err != nil {
			return err
		}
	} else {
		label = strings.Join(fs.Args(), " ")
		if strings.TrimSpace(label) == "" {
			return errors.New("usage: coach image -exercise DAY:N | -meal NAME | LABEL")
		}
		// the image endpoint needs no session
		c = client.New(client.Config{BaseURL: serverURL()})
		if s, err := loadSession(); err == nil && s.Server != "" && os.Getenv("COACH_SERVER") == "" {
			c = client.New(client.Config{BaseURL: s.Server})
		}
	}

	fmt.Println(c.ImageOrPlaceholder(ctx, label, kind))
	return nil
}

// imageTarget resolves the image label for an exercise ("DAY:N") or a meal
// of plan.
func imageTarget(plan *domain.FitnessPlan, exercise, meal string) (string, client.ImageKind, error) {
	if plan == nil {
		return "", client.ExerciseImage, domain.ErrNoActivePlan
	}
	if exercise != "" && meal != "" {
		return "", client.ExerciseImage, errors.New("use either -exercise or -meal")
	}

	if meal != "" {
		for _, m := range plan.DietPlan.Meals {
			if strings.EqualFold(m.Name, strings.TrimSpace(meal)) {
				return client.MealLabel(m), client.MealImage, nil
			}
		}
		return "", client.MealImage, fmt.Errorf("no meal %q in the current plan", meal)
	}

	dayPart, numPart, found := strings.Cut(exercise, ":")
	if !found {
		return "", client.ExerciseImage, fmt.Errorf("invalid exercise %q, expected DAY:N", exercise)
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil || day < 1 || day > len(plan.WorkoutPlan.WeeklySchedule) {
		return "", client.ExerciseImage, fmt.Errorf("day %q out of range", dayPart)
	}
	exercises := plan.WorkoutPlan.WeeklySchedule[day-1].Exercises
	n, err := strconv.Atoi(numPart)
	if err != nil || n < 1 || n > len(exercises) {
		return "", client.ExerciseImage, fmt.Errorf("exercise %q out of range", numPart)
	}
	return exercises[n-1].Name, client.ExerciseImage, nil
}

func runSpeak(ctx context.Context, args []string) error {
	fs := newFlagSet("speak")
	name := fs.String("section", "workout", "workout or diet")
	if err := fs.Parse(args); err != nil {
		return err
	}

	section, err := speech.ParseSection(*name)
	if err != nil {
		return err
	}
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}
	narration, err := c.Narration(ctx, string(section))
	if err != nil {
		return err
	}

	var speaker *speech.Speaker
	if engine, err := speech.NewCommandEngine(); err == nil {
		speaker = speech.NewSpeaker(engine)
	} else {
		speaker = speech.NewSpeaker(nil)
	}

	fmt.Println(narration.Text)
	err = speaker.Speak(ctx, narration.Text)
	switch {
	case errors.Is(err, domain.ErrUnsupportedCapability):
		fmt.Fprintln(os.Stderr, "Speech not supported on this system")
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Stopped")
		return nil
	}
	return err
}

func runExport(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	dir := fs.String("o", ".", "output directory")
	archive := fs.Bool("archive", false, "also upload the PDF server-side")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}

	data, filename, err := c.DownloadPDF(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(*dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("✓ Saved %s\n", path)

	if *archive {
		a, err := c.ArchivePDF(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Archived at %s\n", a.URL)
	}
	return nil
}

func runTheme(ctx context.Context, args []string) error {
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}
	dark, err := c.ToggleTheme(ctx)
	if err != nil {
		return err
	}
	if dark {
		fmt.Println("Dark mode on")
	} else {
		fmt.Println("Dark mode off")
	}
	return nil
}

func runQuote(ctx context.Context, args []string) error {
	fs := newFlagSet("quote")
	refresh := fs.Bool("refresh", false, "ask for a new quote")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := client.New(client.Config{BaseURL: serverURL()})
	quote, err := c.Quote(ctx, *refresh)
	if err != nil {
		return err
	}
	fmt.Println(render.NewTheme(false).Quote.Render(fmt.Sprintf("%q", quote)))
	return nil
}

func runReset(ctx context.Context, args []string) error {
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}
	if err := c.ClearPlan(ctx); err != nil {
		return err
	}
	fmt.Println("Ready for a new plan!")
	return nil
}
