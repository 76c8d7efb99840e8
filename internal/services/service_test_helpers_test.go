package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/database/testutil"
	"github.com/charlesng35/agm-registration/internal/models"
	"github.com/charlesng35/agm-registration/pkg/mail"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t)
}

func seedShareholder(t *testing.T, db *gorm.DB, holder models.Shareholder) models.Shareholder {
	t.Helper()
	require.NoError(t, db.Create(&holder).Error)
	return holder
}

// recordingMailer captures sent messages and can be told to fail.
type recordingMailer struct {
	sent    []mail.Message
	failErr error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

var errMailDown = errors.New("mail relay unreachable")
