// internal/services/stats_service.go
package services

import (
	"sync"
	"time"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/storage"
)

// UsageStats 表示图鉴访问统计
type UsageStats struct {
	TodayRequests int            `json:"today_requests"`
	TotalWishes   int            `json:"total_wishes"`
	DailyStats    map[string]int `json:"daily_stats"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// StatsService 提供访问统计功能
// 数据批量落盘，避免每次请求都写文件
type StatsService struct {
	storage *storage.FileStorage

	mutex       sync.Mutex
	cachedStats *UsageStats

	lastCheckDate string

	isDirty      bool
	lastSaveTime time.Time
	saveInterval time.Duration
}

// NewStatsService 创建统计服务实例
func NewStatsService(fs *storage.FileStorage) *StatsService {
	s := &StatsService{
		storage:      fs,
		saveInterval: 30 * time.Second,
	}

	s.loadStats()

	return s
}

// loadStats 从存储加载统计数据，失败时从零开始
func (s *StatsService) loadStats() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats := &UsageStats{
		DailyStats: make(map[string]int),
	}

	if s.storage.FileExists("stats", "usage.json") {
		s.storage.LoadJSONFile("stats", "usage.json", stats)
		if stats.DailyStats == nil {
			stats.DailyStats = make(map[string]int)
		}
	}

	s.cachedStats = stats
	s.lastCheckDate = time.Now().Format("2006-01-02")
}

// RecordRequest 记录一次图鉴API请求
func (s *StatsService) RecordRequest() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rolloverLocked()

	today := time.Now().Format("2006-01-02")
	s.cachedStats.TodayRequests++
	s.cachedStats.DailyStats[today]++
	s.cachedStats.LastUpdated = time.Now()
	s.isDirty = true

	s.maybeSaveLocked()
}

// RecordWish 记录一次许愿
func (s *StatsService) RecordWish() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rolloverLocked()

	s.cachedStats.TotalWishes++
	s.cachedStats.LastUpdated = time.Now()
	s.isDirty = true

	s.maybeSaveLocked()
}

// GetStats 返回统计数据的副本
func (s *StatsService) GetStats() UsageStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rolloverLocked()

	statsCopy := *s.cachedStats
	statsCopy.DailyStats = make(map[string]int, len(s.cachedStats.DailyStats))
	for day, count := range s.cachedStats.DailyStats {
		statsCopy.DailyStats[day] = count
	}

	return statsCopy
}

// rolloverLocked 跨天时重置当日计数；调用方必须持有锁
func (s *StatsService) rolloverLocked() {
	today := time.Now().Format("2006-01-02")
	if today != s.lastCheckDate {
		s.cachedStats.TodayRequests = 0
		s.lastCheckDate = today
	}
}

// maybeSaveLocked 按保存间隔批量落盘；调用方必须持有锁
func (s *StatsService) maybeSaveLocked() {
	if !s.isDirty || time.Since(s.lastSaveTime) < s.saveInterval {
		return
	}

	if err := s.storage.SaveJSONFile("stats", "usage.json", s.cachedStats); err == nil {
		s.isDirty = false
		s.lastSaveTime = time.Now()
	}
}

// Flush 立即落盘（进程退出时调用）
func (s *StatsService) Flush() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isDirty {
		if err := s.storage.SaveJSONFile("stats", "usage.json", s.cachedStats); err == nil {
			s.isDirty = false
			s.lastSaveTime = time.Now()
		}
	}
}
