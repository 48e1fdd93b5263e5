// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/database/models"
	"github.com/blinklabs-io/tally/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func seedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the datastore with demo elections and voters",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			logger := commonRun()
			if err := seedRun(cfg, logger); err != nil {
				slog.Error(err.Error())
				os.Exit(1)
			}
		},
	}
	return cmd
}

func seedRun(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.New(&database.Config{
		Logger:  logger,
		DataDir: cfg.DatabasePath,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	now := time.Now()

	wallet := func(s string) *string { return &s }
	voters := []*models.Voter{
		{
			Name:          "Yuvraj Patil",
			Email:         "yuvraj.patil@example.com",
			Role:          models.VoterRoleAdmin,
			IsVerified:    true,
			IsActive:      true,
			VoterRef:      "VID001",
			WalletAddress: wallet("0x1234567890123456789012345678901234567890"),
		},
		{
			Name:          "Rohan Patil",
			Email:         "rohan.patil@example.com",
			Role:          models.VoterRoleVoter,
			IsVerified:    true,
			IsActive:      true,
			VoterRef:      "VID002",
			WalletAddress: wallet("0x2234567890123456789012345678901234567890"),
		},
		{
			Name:          "Suraj Shivankar",
			Email:         "suraj.shivankar@example.com",
			Role:          models.VoterRoleVoter,
			IsVerified:    true,
			IsActive:      true,
			VoterRef:      "VID003",
			WalletAddress: wallet("0x3234567890123456789012345678901234567890"),
		},
		{
			Name:          "Harshita Patil",
			Email:         "harshita.patil@example.com",
			Role:          models.VoterRoleVoter,
			IsVerified:    true,
			IsActive:      true,
			VoterRef:      "VID004",
			WalletAddress: wallet("0x4234567890123456789012345678901234567890"),
		},
		{
			Name:          "Vasundhara Mali",
			Email:         "vasundhara.mali@example.com",
			Role:          models.VoterRoleVoter,
			IsVerified:    true,
			IsActive:      true,
			VoterRef:      "VID005",
			WalletAddress: wallet("0x5234567890123456789012345678901234567890"),
		},
		{
			Name:          "Raj Ghodake",
			Email:         "raj.ghodake@example.com",
			Role:          models.VoterRoleVoter,
			IsVerified:    true,
			IsActive:      true,
			VoterRef:      "VID006",
			WalletAddress: wallet("0x6234567890123456789012345678901234567890"),
		},
		{
			Name:       "Tejas Yadav",
			Email:      "tejas.yadav@example.com",
			Role:       models.VoterRoleVoter,
			IsVerified: true,
			IsActive:   true,
			VoterRef:   "VID007",
			// No linked wallet; casting rejects until one is linked
		},
	}
	for _, v := range voters {
		if err := db.CreateVoter(v, nil); err != nil {
			return fmt.Errorf("seeding voter %s: %w", v.Email, err)
		}
	}
	logger.Info(
		fmt.Sprintf("seeded %d voters", len(voters)),
		"component", "seed",
	)

	admin := voters[0]
	elections := []*models.Election{
		{
			Title:                "College Student Council Election 2026",
			Description:          "Annual student council election for leadership positions",
			LedgerID:             1,
			LedgerRef:            uuid.NewString(),
			CreatedBy:            admin.ID,
			CandidateRegDeadline: now.Add(-12 * time.Hour),
			StartTime:            now.Add(-24 * time.Hour),
			EndTime:              now.Add(48 * time.Hour),
			Status:               models.ElectionStatusOngoing,
			IsPublic:             true,
		},
		{
			Title:                "Sports Committee Election 2026",
			Description:          "Election for sports committee representatives",
			LedgerID:             2,
			LedgerRef:            uuid.NewString(),
			CreatedBy:            admin.ID,
			CandidateRegDeadline: now.Add(36 * time.Hour),
			StartTime:            now.Add(3 * 24 * time.Hour),
			EndTime:              now.Add(5 * 24 * time.Hour),
			Status:               models.ElectionStatusScheduled,
			IsPublic:             true,
		},
		{
			Title:                "Cultural Committee Election 2025",
			Description:          "Annual cultural committee election for organizing college events",
			LedgerID:             3,
			LedgerRef:            uuid.NewString(),
			CreatedBy:            admin.ID,
			CandidateRegDeadline: now.Add(-9 * 24 * time.Hour),
			StartTime:            now.Add(-7 * 24 * time.Hour),
			EndTime:              now.Add(-2 * 24 * time.Hour),
			Status:               models.ElectionStatusCompleted,
			IsPublic:             true,
			ResultsPublished:     true,
		},
	}
	for _, e := range elections {
		if err := db.CreateElection(e, nil); err != nil {
			return fmt.Errorf("seeding election %q: %w", e.Title, err)
		}
	}
	logger.Info(
		fmt.Sprintf("seeded %d elections", len(elections)),
		"component", "seed",
	)

	candidates := []*models.Candidate{
		{
			ElectionID:  elections[0].ID,
			CandidateID: 1,
			Name:        "Rohan Patil",
			Party:       "Progressive Students Forum",
			Manifesto:   "Improve campus facilities, organize more cultural events, and establish a student grievance portal.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[1].ID,
			IsVerified:  true,
			IsActive:    true,
		},
		{
			ElectionID:  elections[0].ID,
			CandidateID: 2,
			Name:        "Harshita Patil",
			Party:       "Students Unity Alliance",
			Manifesto:   "Focus on academic excellence, mental health support, and better library resources.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[3].ID,
			IsVerified:  true,
			IsActive:    true,
		},
		{
			ElectionID:  elections[0].ID,
			CandidateID: 3,
			Name:        "Suraj Shivankar",
			Party:       "Independent",
			Manifesto:   "Transparent governance, improved sports facilities, and student-led initiatives.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[2].ID,
			IsVerified:  true,
			IsActive:    true,
		},
		{
			ElectionID:  elections[1].ID,
			CandidateID: 1,
			Name:        "Vasundhara Mali",
			Party:       "Sports Enthusiasts",
			Manifesto:   "Promote inter-college tournaments, upgrade equipment, and increase sports budget.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[4].ID,
			IsVerified:  true,
			IsActive:    true,
		},
		{
			ElectionID:  elections[1].ID,
			CandidateID: 2,
			Name:        "Raj Ghodake",
			Party:       "Athletic Association",
			Manifesto:   "Build new sports complex, organize fitness programs, and support student athletes.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[5].ID,
			IsVerified:  true,
			IsActive:    true,
		},
		{
			ElectionID:  elections[2].ID,
			CandidateID: 1,
			Name:        "Tejas Yadav",
			Party:       "Cultural Enthusiasts",
			Manifesto:   "Organize more cultural events, inter-college competitions, and talent shows.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[6].ID,
			IsVerified:  true,
			IsActive:    true,
		},
		{
			ElectionID:  elections[2].ID,
			CandidateID: 2,
			Name:        "Vasundhara Mali",
			Party:       "Arts & Culture Forum",
			Manifesto:   "Promote traditional arts, music festivals, and cultural exchange programs.",
			Status:      models.CandidateStatusActive,
			VoterID:     voters[4].ID,
			IsVerified:  true,
			IsActive:    true,
		},
	}
	for _, c := range candidates {
		if err := db.CreateCandidate(c, nil); err != nil {
			return fmt.Errorf("seeding candidate %q: %w", c.Name, err)
		}
	}
	logger.Info(
		fmt.Sprintf("seeded %d candidates", len(candidates)),
		"component", "seed",
	)

	return nil
}
