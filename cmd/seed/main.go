// Command seed loads a demo user and a set of sample community
// projects so a fresh database has something to browse.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/kerryjj/community-votes-action/internal/auth"
	"github.com/kerryjj/community-votes-action/internal/config"
	"github.com/kerryjj/community-votes-action/internal/db"
	"github.com/kerryjj/community-votes-action/internal/models"
)

var sampleProjects = []models.Project{
	{
		Title:       "Riverbank Cleanup",
		Description: "Help clean up trash along the riverside park. We'll provide gloves and bags. Join us for a cleaner community!",
		Location:    "Riverside Park, Main Street",
		Type:        models.TypeCleanup,
	},
	{
		Title:       "Community Garden Weeding",
		Description: "The community garden needs help with removing invasive weeds. Bring gardening tools if you have them!",
		Location:    "Community Garden, Oak Avenue",
		Type:        models.TypeWeeds,
	},
	{
		Title:       "Playground Graffiti Removal",
		Description: "The children's playground has been vandalized with graffiti. Help us restore it to a family-friendly space.",
		Location:    "Central Park Playground",
		Type:        models.TypeGraffiti,
	},
	{
		Title:       "Park Bench Restoration",
		Description: "Several benches in the central park need repainting and minor repairs. Help us make them beautiful and safe again.",
		Location:    "Central Park, East Entrance",
		Type:        models.TypeOther,
	},
	{
		Title:       "Highway Entrance Cleanup",
		Description: "The entrance to our community from the highway is littered with trash. Let's clean it up to make a better first impression.",
		Location:    "Highway 101 Entrance",
		Type:        models.TypeCleanup,
	},
	{
		Title:       "Elementary School Garden",
		Description: "Help maintain the garden at the local elementary school. We need to remove weeds and plant new seasonal flowers.",
		Location:    "Lincoln Elementary School",
		Type:        models.TypeWeeds,
	},
}

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	email := "demo@community.local"
	password := "Demo2025!"

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user, err := database.CreateUser(ctx, email, "Demo Neighbor", hash)
	if err != nil {
		// Already seeded; reuse the existing account.
		user, err = database.GetUserByEmail(ctx, email)
		if err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
	}

	for i := range sampleProjects {
		p := sampleProjects[i]
		p.CreatorID = user.ID
		if err := database.CreateProject(ctx, &p); err != nil {
			log.Fatalf("Failed to seed %q: %v", p.Title, err)
		}
		fmt.Printf("Seeded project %q (%s)\n", p.Title, p.ID)
	}

	fmt.Printf("Demo user: %s / %s\n", email, password)
}
