package scheduler

import (
	"fmt"
	"time"

	"deal_followup_bot/internal/app"
	domainTelegram "deal_followup_bot/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sessionExpiredText = "Окно переноса сделки закрыто из-за неактивности. Изменения не сохранены, откройте его снова командой /delay."

// SessionSweeper periodically forgets idle chat sessions. Open delay workflows
// in those sessions are cancelled and the manager is told so.
type SessionSweeper struct {
	cronEngine *cron.Cron
	sessions   *app.SessionManager
	client     domainTelegram.Client
	logger     *logrus.Entry
	cronSpec   string
	ttl        time.Duration
}

func NewSessionSweeper(
	sessions *app.SessionManager,
	client domainTelegram.Client,
	logger *logrus.Entry,
	cronSpec string, // e.g. "*/15 * * * *"
	ttl time.Duration,
) *SessionSweeper {
	return &SessionSweeper{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		sessions:   sessions,
		client:     client,
		logger:     logger,
		cronSpec:   cronSpec,
		ttl:        ttl,
	}
}

// Start registers the sweep job and starts the cron engine.
func (s *SessionSweeper) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.Sweep); err != nil {
		return fmt.Errorf("could not add session sweep job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Session sweeper started")
	return nil
}

// Sweep runs one pass. It is exported so the job can be triggered directly.
func (s *SessionSweeper) Sweep() {
	before := s.sessions.Len()
	cancelled := s.sessions.Sweep(s.ttl)

	for _, chatID := range cancelled {
		if err := s.client.SendMessage(chatID, sessionExpiredText, nil); err != nil {
			s.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to tell manager about expired delay session")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"sessions_before":     before,
		"sessions_after":      s.sessions.Len(),
		"workflows_cancelled": len(cancelled),
	}).Debug("Session sweep finished")
}

// Stop stops the cron engine and waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Session sweeper stopped")
}
