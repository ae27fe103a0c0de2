package services

import (
	"context"
	"sync"
	"time"
)

// Scheduler периодически запускает сборщик снапшотов.
// Дневная гранулярность и идемпотентный upsert означают, что более частые
// прогоны безвредны: они просто перезаписывают снапшот текущей даты.
type Scheduler struct {
	collector *CollectorService
	interval  time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(collector *CollectorService, interval time.Duration) *Scheduler {
	return &Scheduler{
		collector: collector,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает цикл сбора; блокируется до отмены контекста или Stop
func (s *Scheduler) Start(ctx context.Context) {
	s.collector.Logger.Printf("scheduler: starting collection loop, interval %s", s.interval)

	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Первый прогон сразу при старте
	s.collector.Collect(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			s.collector.Logger.Println("scheduler: stopped (context cancelled)")
			return
		case <-s.stopChan:
			s.collector.Logger.Println("scheduler: stopped")
			return
		case <-ticker.C:
			s.collector.Collect(ctx, time.Now())
		}
	}
}

// Stop останавливает цикл и дожидается его завершения
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
