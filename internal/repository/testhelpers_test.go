package repository

import (
	"context"
	"log"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupTestDB spins up a fresh MongoDB container and returns the database connection
// along with a cleanup function. Skips when no container provider is available.
func setupTestDB(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func samplePlan() *domain.FitnessPlan {
	return &domain.FitnessPlan{
		WorkoutPlan: domain.WorkoutPlan{
			Overview: "Three full body sessions",
			WeeklySchedule: []domain.WorkoutDay{{
				Day:       "Monday",
				Focus:     "Lower body",
				Duration:  "45 minutes",
				Exercises: []domain.Exercise{{Name: "Goblet Squat", Sets: "3", Reps: "12", Rest: "60s"}},
			}},
			Tips: []string{"Warm up"},
		},
		DietPlan: domain.DietPlan{
			DailyCalories: "2200",
			Macros:        domain.Macros{Protein: "150g", Carbs: "220g", Fats: "70g"},
			Meals: domain.Meals{
				{Name: "lunch", Time: "1:00 PM", Items: []string{"Rice", "Dal"}, Calories: "600"},
				{Name: "breakfast", Time: "8:00 AM", Items: []string{"Oats"}, Calories: "400"},
			},
		},
		Motivation: domain.Motivation{Quote: "Start now", ExpectedResults: "Stronger in 8 weeks"},
	}
}

func sampleState() domain.AppState {
	st := domain.DefaultState()
	st.DarkMode = true
	st.UserData = &domain.UserProfile{
		Name: "Asha", Age: 28, Gender: domain.GenderFemale, Height: 165, Weight: 60,
		Goal: domain.GoalEndurance, FitnessLevel: domain.LevelBeginner,
		Location: domain.LocationOutdoor, Diet: domain.DietVeg,
	}
	st.FitnessPlan = samplePlan()
	return st
}
