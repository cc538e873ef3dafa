package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	opmodels "github.com/carebridge/hms-backend/internal/operations/models"
)

// BedChargeJob creates one bed-fee charge per active admission per run.
// The fee service is resolved by convention: an active service named
// "<bed category label> Charge" in the patient's organization (e.g.
// "General Ward Charge"). Admissions without a matching service are skipped
// and logged so the tenant can fix their catalog.
type BedChargeJob struct {
	DB      *sql.DB
	Charges *ChargeService
}

func NewBedChargeJob(db *sql.DB, charges *ChargeService) *BedChargeJob {
	return &BedChargeJob{DB: db, Charges: charges}
}

type activeAdmission struct {
	admissionID uuid.UUID
	patientID   uuid.UUID
	orgID       uuid.UUID
	category    string
	dailyCharge decimal.Decimal
}

// Run creates today's bed charges. Each admission is charged in its own
// transaction so one failure cannot roll back the others.
func (j *BedChargeJob) Run(ctx context.Context) {
	rows, err := j.DB.QueryContext(ctx, `
		SELECT a.id, a.patient_id, p.organization_id, b.category, b.daily_charge
		FROM admissions a
		JOIN patients p ON a.patient_id = p.id
		JOIN beds b ON a.bed_id = b.id
		WHERE a.status = 'ADMITTED'`,
	)
	if err != nil {
		log.Error().Err(err).Msg("bed charge job: listing active admissions failed")
		return
	}

	var admissions []activeAdmission
	for rows.Next() {
		var a activeAdmission
		if err := rows.Scan(&a.admissionID, &a.patientID, &a.orgID, &a.category, &a.dailyCharge); err != nil {
			rows.Close()
			log.Error().Err(err).Msg("bed charge job: scan failed")
			return
		}
		admissions = append(admissions, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("bed charge job: listing active admissions failed")
		return
	}

	charged := 0
	for _, a := range admissions {
		if err := j.chargeOne(ctx, a); err != nil {
			log.Warn().Err(err).
				Str("admission_id", a.admissionID.String()).
				Msg("bed charge job: admission skipped")
			continue
		}
		charged++
	}
	log.Info().Int("charged", charged).Int("active", len(admissions)).
		Msg("bed charge job finished")
}

func (j *BedChargeJob) chargeOne(ctx context.Context, a activeAdmission) error {
	serviceID, err := j.feeServiceFor(ctx, a.orgID, a.category)
	if err != nil {
		return err
	}
	// The bed's daily charge overrides the service price.
	price := a.dailyCharge
	_, err = j.Charges.CreateCharge(ctx, a.orgID, a.patientID, serviceID, 1, &price)
	return err
}

func (j *BedChargeJob) feeServiceFor(ctx context.Context, orgID uuid.UUID, category string) (uuid.UUID, error) {
	name := opmodels.BedCategory(category).Label() + " Charge"
	var id uuid.UUID
	err := j.DB.QueryRowContext(ctx, `
		SELECT id FROM services
		WHERE organization_id = ? AND name = ? AND is_active = TRUE`,
		orgID, name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return uuid.Nil, apperr.NotFound("no active bed fee service named " + name)
	} else if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Start runs the job once a day until ctx is cancelled.
func (j *BedChargeJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Run(ctx)
			}
		}
	}()
}
