package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/teamlexia/admin-api/databases"
)

// Scheduler handles periodic background jobs for access code maintenance
type Scheduler struct {
	cron   *cron.Cron
	CodeDB databases.AccessCodeDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(codeDB databases.AccessCodeDatabase) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		CodeDB: codeDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge expired and consumed access codes daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.cleanupAccessCodes)
	if err != nil {
		zap.S().Errorw("failed to register access code cleanup job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Access code scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Access code scheduler stopped")
}

// cleanupAccessCodes removes codes that are past expiry along with
// one-time codes that have already been consumed
func (s *Scheduler) cleanupAccessCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())

	filter := bson.M{
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": now}},
			{"isOneTime": true, "isUsed": true},
		},
	}

	deleted, err := s.CodeDB.DeleteMany(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to clean up access codes", "error", err)
		return
	}

	zap.S().Infow("Access code cleanup complete", "deleted", deleted)
}
