// Package main provides a tool to seed the database with test feed data.
//
// This creates a category taxonomy, test creators and viewers, a batch of
// videos per creator, and realistic watch/like/follow activity so the
// ranking and feed endpoints have something to chew on.
//
// Usage:
//
//	DATA_PATH=~/reelfeed go run ./cmd/seed
//	DATA_PATH=~/reelfeed go run ./cmd/seed --users 10 --videos-per-user 8
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/reelfeedapp/reelfeed-server/internal/auth"
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/id"
	"github.com/reelfeedapp/reelfeed-server/internal/search"
	"github.com/reelfeedapp/reelfeed-server/internal/store/sqlite"
)

var (
	userCount     = flag.Int("users", 6, "Number of test users to create")
	videosPerUser = flag.Int("videos-per-user", 5, "Number of videos to create per user")
	seedPassword  = flag.String("password", "SeedPassword123!", "Password for all seeded users")
)

// taxonomy is the fixed parent/leaf category tree the seeder installs.
var taxonomy = map[string][]string{
	"Sports":  {"Tennis", "Soccer", "Climbing", "Cycling"},
	"Music":   {"Guitar", "Piano", "Production", "Live Sets"},
	"Cooking": {"Baking", "Street Food", "Knife Skills"},
	"Gaming":  {"Speedruns", "Indie", "Retro"},
	"Tech":    {"Homelab", "Keyboards", "AI Demos"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/reelfeed")
	}

	dbPath := filepath.Join(dataPath, "reelfeed.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	index, err := search.NewIndex(search.Options{DataPath: dataPath})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	parents, leaves := seedTaxonomy(ctx, s)
	fmt.Printf("Taxonomy ready: %d parents, %d categories\n", len(parents), len(leaves))

	users := seedUsers(ctx, s, rng, parents)
	fmt.Printf("Created %d users\n", len(users))

	videos := seedVideos(ctx, s, index, rng, users, leaves)
	fmt.Printf("Created %d videos\n", len(videos))

	seedActivity(ctx, s, rng, users, videos)
	fmt.Println("\nDone. Log in with any seeded user, e.g. creator1 /", *seedPassword)
}

// seedTaxonomy installs the fixed category tree, reusing rows that already
// exist from a previous run.
func seedTaxonomy(ctx context.Context, s *sqlite.Store) ([]*domain.ParentCategory, []*domain.Category) {
	existing, err := s.ListParentCategories(ctx)
	if err != nil {
		log.Fatalf("Failed to list parent categories: %v", err)
	}
	if len(existing) > 0 {
		leaves, err := s.ListCategories(ctx)
		if err != nil {
			log.Fatalf("Failed to list categories: %v", err)
		}
		fmt.Println("Reusing existing taxonomy")
		return existing, leaves
	}

	now := time.Now().UTC()
	var parents []*domain.ParentCategory
	var leaves []*domain.Category

	for parentName, leafNames := range taxonomy {
		parent := &domain.ParentCategory{
			ID:        id.MustGenerate("pcat"),
			Name:      parentName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateParentCategory(ctx, parent); err != nil {
			log.Fatalf("Failed to create parent category %s: %v", parentName, err)
		}
		parents = append(parents, parent)

		for _, leafName := range leafNames {
			leaf := &domain.Category{
				ID:               id.MustGenerate("cat"),
				Name:             leafName,
				ParentCategoryID: parent.ID,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := s.CreateCategory(ctx, leaf); err != nil {
				log.Fatalf("Failed to create category %s: %v", leafName, err)
			}
			leaves = append(leaves, leaf)
		}
	}

	return parents, leaves
}

func seedUsers(ctx context.Context, s *sqlite.Store, rng *rand.Rand, parents []*domain.ParentCategory) []*domain.User {
	hash, err := auth.HashPassword(*seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	var users []*domain.User

	for n := 1; n <= *userCount; n++ {
		username := fmt.Sprintf("creator%d", n)

		if existing, err := s.GetUserByUsername(ctx, username); err == nil {
			users = append(users, existing)
			continue
		}

		user := &domain.User{
			ID:           id.MustGenerate("usr"),
			Username:     username,
			Email:        fmt.Sprintf("%s@seed.reelfeed.dev", username),
			PasswordHash: hash,
			Bio:          fmt.Sprintf("Seeded test account #%d", n),
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", username, err)
		}

		// Two or three random parent interests so home feeds differ per user.
		picks := pickParents(rng, parents, 2+rng.Intn(2))
		if err := s.SetUserParentInterests(ctx, user.ID, picks); err != nil {
			log.Fatalf("Failed to set interests for %s: %v", username, err)
		}
		user.ParentInterests = picks

		users = append(users, user)
		fmt.Printf("  %s (%s) interests=%v\n", username, user.ID, picks)
	}

	return users
}

func seedVideos(ctx context.Context, s *sqlite.Store, index *search.Index, rng *rand.Rand, users []*domain.User, leaves []*domain.Category) []*domain.Video {
	var videos []*domain.Video

	for _, user := range users {
		for n := 1; n <= *videosPerUser; n++ {
			leaf := leaves[rng.Intn(len(leaves))]
			created := time.Now().UTC().Add(-time.Duration(rng.Intn(30*24)) * time.Hour)

			video := &domain.Video{
				ID:                id.MustGenerate("vid"),
				CreatorID:         user.ID,
				Title:             fmt.Sprintf("%s session #%d by %s", leaf.Name, n, user.Username),
				Description:       fmt.Sprintf("A short %s clip.", leaf.Name),
				DurationSecs:      15 + rng.Intn(285),
				IsPublic:          rng.Intn(10) > 0, // roughly one private video in ten
				IsPremium:         rng.Intn(10) == 0,
				CategoryIDs:       []string{leaf.ID},
				ParentCategoryIDs: []string{leaf.ParentCategoryID},
				CreatedAt:         created,
				UpdatedAt:         created,
			}
			if err := s.CreateVideo(ctx, video); err != nil {
				log.Fatalf("Failed to create video: %v", err)
			}

			doc := search.VideoToDocument(video, user.Username, []string{leaf.Name})
			if err := index.IndexVideo(doc); err != nil {
				log.Printf("Failed to index video %s: %v", video.ID, err)
			}

			videos = append(videos, video)
		}
	}

	return videos
}

// seedActivity generates watches, likes, and follows through the same
// accrual rules the interaction endpoints apply, so seeded interest
// profiles match what organic usage would have produced.
func seedActivity(ctx context.Context, s *sqlite.Store, rng *rand.Rand, users []*domain.User, videos []*domain.Video) {
	now := time.Now().UTC()
	watches, likes, follows := 0, 0, 0

	for _, user := range users {
		// Session tokens are client-generated opaque strings in production.
		sessionToken := uuid.NewString()

		for _, video := range videos {
			if video.CreatorID == user.ID || !video.IsPublic {
				continue
			}
			// Watch roughly a third of the pool.
			if rng.Intn(3) != 0 {
				continue
			}

			watchTime := rng.Float64()
			watch := domain.NewWatch(id.MustGenerate("wat"), user.ID, video.ID, watchTime, video.DurationSecs, now)
			if err := s.CreateWatch(ctx, watch); err != nil {
				log.Printf("Failed to record watch: %v", err)
				continue
			}
			watches++

			if !domain.QualifiesForInterest(watch.WatchTime) {
				continue
			}

			counted, err := s.RecordWatchSession(ctx, user.ID, video.ID, sessionToken, now)
			if err == nil && counted {
				_ = s.IncrementVideoViews(ctx, video.ID)
			}
			delta := domain.WatchInterestDelta(watch.WatchTime)
			if err := s.AccrueCategoryInterest(ctx, user.ID, video.CategoryIDs, delta, now); err != nil {
				log.Printf("Failed to accrue watch interest: %v", err)
			}

			// Engaged watches convert to likes about half the time.
			if rng.Intn(2) == 0 {
				like := &domain.Like{UserID: user.ID, VideoID: video.ID, CreatedAt: now}
				if err := s.CreateLike(ctx, like); err != nil {
					continue
				}
				likes++
				_, _ = s.AdjustVideoLikes(ctx, video.ID, 1)
				if err := s.AccrueCategoryInterest(ctx, user.ID, video.CategoryIDs, domain.LikeInterestDelta(), now); err != nil {
					log.Printf("Failed to accrue like interest: %v", err)
				}
			}
		}

		// Follow a couple of other creators.
		for _, other := range pickUsers(rng, users, 2) {
			if other.ID == user.ID {
				continue
			}
			follow := &domain.Follow{FollowerID: user.ID, FolloweeID: other.ID, CreatedAt: now}
			if err := s.CreateFollow(ctx, follow); err == nil {
				follows++
			}
		}
	}

	fmt.Printf("Activity: %d watches, %d likes, %d follows\n", watches, likes, follows)
}

func pickParents(rng *rand.Rand, parents []*domain.ParentCategory, n int) []string {
	perm := rng.Perm(len(parents))
	if n > len(perm) {
		n = len(perm)
	}
	ids := make([]string, 0, n)
	for _, idx := range perm[:n] {
		ids = append(ids, parents[idx].ID)
	}
	return ids
}

func pickUsers(rng *rand.Rand, users []*domain.User, n int) []*domain.User {
	perm := rng.Perm(len(users))
	if n > len(perm) {
		n = len(perm)
	}
	picked := make([]*domain.User, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, users[idx])
	}
	return picked
}
