// Package mocks provides mock implementations for testing the enrichment job system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
// Methods: Create, GetByID, FindInFlight, ReserveNext, FailExpiredLeases, WaitForNotification, SetProgress, Complete, Fail, Stats
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core JobRepository

// Generate mock for ReaperRepository interface from internal/core package.
// Methods: FailStalePendingJobs, DeleteOldJobs
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=reaper_repository_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core ReaperRepository

// Generate mock for PeopleRepository interface from internal/core package.
// Methods: GetPerson, GetCompany
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=people_repository_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core PeopleRepository

// Generate mock for ResearchRepository interface from internal/core package.
// Methods: Latest, Persist, ListByCompany, UpdatePeopleStatus
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=research_repository_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core ResearchRepository

// Generate mock for InflightStore interface from internal/core package.
// Methods: Acquire, Get, Set, Release
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=inflight_store_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core InflightStore

// Generate mock for ResearchProvider interface from internal/core package.
// Methods: Name, Generate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=research_provider_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core ResearchProvider

// Generate mock for ProgressPublisher interface from internal/core package.
// Methods: PublishProgress
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=progress_publisher_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core ProgressPublisher

// Generate mock for WorkerLock interface from internal/core package.
// Methods: TryAcquire
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=worker_lock_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core WorkerLock

// Generate mock for WorkerHeartbeat interface from internal/core package.
// Methods: Beat, Alive
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=worker_heartbeat_mock.go github.com/yuvrajjangir/AlphaAI-Backend/internal/core WorkerHeartbeat
