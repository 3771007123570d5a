// Package jobs holds the scheduled background work.
package jobs

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mobil_kargo/internal/config"
)

// ReconcileJob recomputes the aggregates the request path maintains
// incrementally (courier rating averages, completed-order counters),
// correcting any drift left by requests that crashed between the mutation
// and the aggregate update.
type ReconcileJob struct {
	cron *cron.Cron
}

// NewReconcileJob creates the job; it runs nightly at 03:00.
func NewReconcileJob() *ReconcileJob {
	return &ReconcileJob{cron: cron.New()}
}

// Start schedules the job.
func (j *ReconcileJob) Start() error {
	_, err := j.cron.AddFunc("0 3 * * *", j.run)
	if err != nil {
		return err
	}
	j.cron.Start()
	logrus.Info("aggregate reconciliation job started (nightly at 03:00)")
	return nil
}

// Stop stops the scheduler.
func (j *ReconcileJob) Stop() {
	j.cron.Stop()
	logrus.Info("aggregate reconciliation job stopped")
}

func (j *ReconcileJob) run() {
	err := config.DB.Exec(`
		UPDATE users SET rating = r.avg
		FROM (
			SELECT rated_id, ROUND(AVG(score)::numeric, 1) AS avg
			FROM ratings WHERE deleted_at IS NULL
			GROUP BY rated_id
		) r
		WHERE users.id = r.rated_id`).Error
	if err != nil {
		logrus.WithError(err).Error("rating reconciliation failed")
	}

	err = config.DB.Exec(`
		UPDATE users SET completed_orders = o.cnt
		FROM (
			SELECT courier_id, COUNT(*) AS cnt
			FROM orders WHERE status = 'delivered' AND deleted_at IS NULL
			GROUP BY courier_id
		) o
		WHERE users.id = o.courier_id`).Error
	if err != nil {
		logrus.WithError(err).Error("completed-order reconciliation failed")
	}

	logrus.Info("aggregate reconciliation completed")
}
