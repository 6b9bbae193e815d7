package main

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/database"
	"github.com/botikaph/annotator-backend/internal/models"
	"github.com/botikaph/annotator-backend/internal/service"
	"github.com/botikaph/annotator-backend/internal/types"
)

func sampleSubmissions() []*types.AnnotationSubmission {
	feverNotes, _ := json.Marshal(types.MedicalNotes{
		OtcDosageGuide: map[string]types.DosageFields{
			"Paracetamol": {
				DosageMg:       "500",
				TimesPerDay:    "3",
				MaxDosesPerDay: "4",
				Notes:          "Take after meals. Do not exceed 4g per day.",
			},
		},
	})
	coughNotes, _ := json.Marshal(types.MedicalNotes{
		OtcDosageGuide: map[string]types.DosageFields{
			"Carbocisteine": {
				DosageMg:       "500",
				TimesPerDay:    "3",
				MaxDosesPerDay: "3",
				Notes:          "Take with a full glass of water.",
			},
		},
	})
	referralNotes, _ := json.Marshal(types.MedicalNotes{
		OtcDosageGuide: map[string]types.DosageFields{},
	})

	return []*types.AnnotationSubmission{
		{
			UserInquiry:               "Masakit ang ulo ko at may lagnat ako since kahapon",
			UserAge:                   "27",
			Language:                  "tagalog",
			Confidence:                "high",
			MinAge:                    "12",
			SymptomLabels:             []string{"FEVER", "HEADACHE"},
			SuggestedOtc:              []string{"Paracetamol"},
			BrandExamples:             []string{"Biogesic", "Calpol"},
			AgeRestrictionOption:      "no",
			ContraindicationOption:    "no",
			PregnancyOption:           "no",
			GenderSpecificLimitations: "null",
			RequiresMedicalReferral:   "no",
			MedicalNotes:              feverNotes,
		},
		{
			UserInquiry:                  "May ubo ako na may plema, anong pwedeng inumin?",
			Language:                     "tagalog",
			Confidence:                   "medium",
			MinAge:                       "18",
			SymptomLabels:                []string{"COUGH_PRODUCTIVE"},
			SuggestedOtc:                 []string{"Carbocisteine"},
			BrandExamples:                []string{"Solmux"},
			AgeRestrictionOption:         "yes",
			AgeRestrictionsDetail:        "Not recommended for children under 2 years old.",
			ContraindicationOption:       "no",
			PregnancyOption:              "yes",
			PregnancyConsiderationDetail: "Consult a physician before use during the first trimester.",
			GenderSpecificLimitations:    "not_for_pregnant",
			RequiresMedicalReferral:      "no",
			MedicalNotes:                 coughNotes,
		},
		{
			UserInquiry:               "Sumasakit ang dibdib ko kapag humihinga ako ng malalim",
			UserAge:                   "54",
			Language:                  "code-switched",
			Confidence:                "high",
			MinAge:                    "0",
			SymptomLabels:             []string{"UNKNOWN"},
			SuggestedOtc:              []string{},
			AgeRestrictionOption:      "no",
			ContraindicationOption:    "no",
			PregnancyOption:           "no",
			GenderSpecificLimitations: "null",
			RequiresMedicalReferral:   "yes",
			MedicalNotes:              referralNotes,
		},
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open gorm connection")
	}

	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	ctx := context.Background()

	// Seeded entries belong to the first admin account.
	var admin models.User
	if err := db.Where("is_admin = ?", true).First(&admin).Error; err != nil {
		logrus.Fatal("no admin user found, run seed_users first")
	}

	annotationService := service.NewAnnotationService(db)
	for _, sub := range sampleSubmissions() {
		entry, fieldErrs, err := annotationService.Create(ctx, sub, admin.ID)
		if err != nil {
			logrus.WithError(err).Fatal("failed to seed entry")
		}
		if fieldErrs != nil {
			if _, dup := fieldErrs["user_inquiry"]; dup {
				logrus.WithField("inquiry", sub.UserInquiry).Info("entry already exists, skipping")
				continue
			}
			logrus.WithField("errors", fieldErrs).Fatal("seed entry failed validation")
		}
		logrus.WithField("id", entry.ID).Info("seeded annotation entry")
	}
}
