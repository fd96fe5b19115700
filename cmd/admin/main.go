package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"jansevak/backend/internal/config"
	"jansevak/backend/internal/escalation"
	"jansevak/backend/internal/gamification"
	"jansevak/backend/internal/media"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"
	"jansevak/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mumbaiWards seeds the administrative wards of the city. OfficerEmail
// follows the mcgm.gov.in convention and can be corrected per ward later.
var mumbaiWards = map[string]string{
	"A":         "Colaba, Churchgate, Fort",
	"B":         "Dongri, Mohammed Ali Road",
	"C":         "Marine Lines, Chira Bazaar",
	"D":         "Grant Road, Malabar Hill",
	"E":         "Byculla, Mazgaon",
	"F/North":   "Matunga, Sion, Wadala",
	"F/South":   "Parel, Sewri",
	"G/North":   "Dadar, Dharavi, Mahim",
	"G/South":   "Worli, Prabhadevi",
	"H/East":    "Bandra East, Khar East, Santacruz East",
	"H/West":    "Bandra West, Khar West, Santacruz West",
	"K/East":    "Andheri East, Jogeshwari East, Vile Parle East",
	"K/West":    "Andheri West, Juhu, Vile Parle West",
	"L":         "Kurla, Chandivali",
	"M/East":    "Chembur East, Govandi, Mankhurd",
	"M/West":    "Chembur West, Tilak Nagar",
	"N":         "Ghatkopar, Vidyavihar",
	"P/North":   "Malad",
	"P/South":   "Goregaon",
	"R/North":   "Dahisar",
	"R/South":   "Kandivali",
	"R/Central": "Borivali",
	"S":         "Bhandup, Powai",
	"T":         "Mulund",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	s := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: seed-wards | sweep-once | set-status | reopen | show | top")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed-wards":
		seeded := 0
		for name, fullName := range mumbaiWards {
			officer := fmt.Sprintf("amc.%s@mcgm.gov.in", wardSlug(name))
			if _, err := s.FindWardByName(name); err == nil {
				continue
			}
			ward := &models.Ward{Name: name, FullName: fullName, OfficerEmail: officer}
			if err := s.SaveWard(ward); err != nil {
				log.Fatalf("Error seeding ward %s: %v", name, err)
			}
			seeded++
		}
		fmt.Printf("Seeded %d wards.\n", seeded)

	case "sweep-once":
		count, err := buildMachine(s, cfg).SweepOnce(context.Background())
		if err != nil {
			log.Fatalf("Error running sweep: %v", err)
		}
		fmt.Printf("Escalated %d complaints.\n", count)

	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status>")
			os.Exit(1)
		}
		if err := buildMachine(s, cfg).Transition(os.Args[2], models.Status(os.Args[3])); err != nil {
			log.Fatalf("Error setting status: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", os.Args[2], os.Args[3])

	case "reopen":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin reopen <complaint_id>")
			os.Exit(1)
		}
		if err := buildMachine(s, cfg).Reopen(os.Args[2]); err != nil {
			log.Fatalf("Error reopening complaint: %v", err)
		}
		fmt.Printf("Complaint %s has been reopened.\n", os.Args[2])

	case "show":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin show <complaint_id>")
			os.Exit(1)
		}
		complaint, err := s.GetComplaintByID(os.Args[2])
		if err != nil {
			log.Fatalf("Error loading complaint: %v", err)
		}
		count, _ := s.CountVerifications(complaint.ID)
		fmt.Printf("%s [%s] %s\n", complaint.ID, complaint.Status, complaint.Title)
		fmt.Printf("  category=%s urgency=%d level=%d verifications=%d\n",
			complaint.Category, complaint.UrgencyScore, complaint.EscalationLevel, count)
		fmt.Printf("  resolve: %s/api/resolve/%s/%s\n", cfg.BaseURL, complaint.ID, complaint.ResolutionToken)

	case "top":
		limit := 10
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				limit = n
			}
		}
		profiles, err := s.TopProfiles(limit)
		if err != nil {
			log.Fatalf("Error loading leaderboard: %v", err)
		}
		for i, p := range profiles {
			fmt.Printf("%2d. %s  %d points  %v\n", i+1, p.CitizenID, p.Points, p.Badges)
		}

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func buildMachine(s *storage.Service, cfg config.Config) *escalation.Machine {
	dispatcher := &notify.Dispatcher{
		Sender:          notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		Citizens:        s,
		FromAddress:     cfg.FromAddress,
		OverrideEmail:   cfg.OverrideEmail,
		SeniorOfficials: cfg.SeniorOfficials,
		BaseURL:         cfg.BaseURL,
	}
	mediaStore, err := media.NewDiskStore(cfg.MediaDir)
	if err != nil {
		log.Fatalf("failed to initialize media store: %v", err)
	}
	machine := escalation.NewMachine(s, gamification.NewLedger(s), dispatcher, mediaStore)
	machine.EscalateAfter = cfg.EscalationAfter
	return machine
}

func wardSlug(name string) string {
	slug := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			slug = append(slug, r+('a'-'A'))
		case r == '/':
			slug = append(slug, '.')
		default:
			slug = append(slug, r)
		}
	}
	return string(slug)
}
