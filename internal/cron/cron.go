package cron

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/ascmontjoie/club-portal-backend/internal/config"
	"github.com/ascmontjoie/club-portal-backend/internal/email"
	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/socket"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron         *cron.Cron
	cfg          *config.Config
	approvalRepo repository.ApprovalRepository
	profileRepo  repository.ProfileRepository
	emailSvc     *email.Service
	broadcaster  *socket.Broadcaster
}

// NewScheduler creates a new scheduler
func NewScheduler(
	cfg *config.Config,
	approvalRepo repository.ApprovalRepository,
	profileRepo repository.ProfileRepository,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		cfg:          cfg,
		approvalRepo: approvalRepo,
		profileRepo:  profileRepo,
		emailSvc:     emailSvc,
		broadcaster:  broadcaster,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 8 AM - pending approval digest to admins
	s.cron.AddFunc("0 8 * * *", func() {
		log.Println("[Cron] Running pending approval digest...")
		s.sendPendingDigest()
	})

	// Run every hour - push the live pending count to connected admins
	s.cron.AddFunc("0 * * * *", func() {
		s.pushPendingCount()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sendPendingDigest emails every admin a summary of the review queue.
// Nothing is sent when the queue is empty.
func (s *Scheduler) sendPendingDigest() {
	if s.emailSvc == nil {
		return
	}
	ctx := context.Background()

	pending, err := s.approvalRepo.FindPending(ctx)
	if err != nil {
		log.Printf("[Cron] Error loading pending approvals: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	requests := make([]email.DigestRequest, 0, len(pending))
	for _, r := range pending {
		requests = append(requests, email.DigestRequest{
			Action:      r.Action,
			RequestedBy: r.RequestedBy,
		})
	}

	admins, err := s.profileRepo.FindByRole(ctx, types.RoleAdmin)
	if err != nil {
		log.Printf("[Cron] Error loading admins: %v", err)
		return
	}

	for _, admin := range admins {
		if !admin.IsActive {
			continue
		}
		data := email.PendingDigestData{
			AdminName:    admin.FullName,
			PendingCount: len(pending),
			Requests:     requests,
			DashboardURL: s.cfg.FrontendURL + "/admin/approvals",
		}
		if err := s.emailSvc.SendPendingDigest(admin.Email, data); err != nil {
			log.Printf("[Cron] Error sending digest to %s: %v", admin.Email, err)
		}
	}

	log.Printf("[Cron] ✅ Digest sent to %d admin(s), %d request(s) pending", len(admins), len(pending))
}

// pushPendingCount pushes the queue size to connected admin dashboards
func (s *Scheduler) pushPendingCount() {
	if s.broadcaster == nil {
		return
	}
	ctx := context.Background()

	count, err := s.approvalRepo.CountPending(ctx)
	if err != nil {
		log.Printf("[Cron] Error counting pending approvals: %v", err)
		return
	}

	admins, err := s.profileRepo.FindByRole(ctx, types.RoleAdmin)
	if err != nil {
		return
	}
	for _, admin := range admins {
		s.broadcaster.SendApprovalCount(admin.ID, count)
	}
}
