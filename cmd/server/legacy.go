package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/model"
)

type creator interface {
	Create(ctx context.Context, ownerID string, d model.Draft) (string, error)
}

// importLegacy creates one appointment per {Name, Date, Time} document in r.
// Records that fail validation are skipped and counted.
func importLegacy(ctx context.Context, r io.Reader, owner string, repo creator, log logrus.FieldLogger) (imported, skipped int, err error) {
	var legacy []model.LegacyAppointment
	if err := json.NewDecoder(r).Decode(&legacy); err != nil {
		return 0, 0, fmt.Errorf("decode legacy file: %w", err)
	}

	for i, l := range legacy {
		id, err := repo.Create(ctx, owner, l.Draft())
		if errors.Is(err, appointment.ErrValidation) {
			log.WithError(err).WithField("index", i).Warn("skipping legacy record")
			skipped++
			continue
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("import record %d: %w", i, err)
		}
		log.WithFields(logrus.Fields{"index": i, "id": id}).Debug("imported")
		imported++
	}
	return imported, skipped, nil
}
