package logger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

type counterPair struct {
	warns  int64
	errors int64
}

var (
	apiCalls       int64
	apiCost        int64
	videosSeen     int64
	recordsWritten int64
	componentStats sync.Map // map[string]*counterPair
)

func recordWarn(component string) {
	pair := loadPair(component)
	atomic.AddInt64(&pair.warns, 1)
}

func recordError(component string) {
	pair := loadPair(component)
	atomic.AddInt64(&pair.errors, 1)
}

func loadPair(component string) *counterPair {
	v, _ := componentStats.LoadOrStore(component, &counterPair{})
	return v.(*counterPair)
}

// IncrementAPICall accounts one remote request and its quota cost for the
// periodic report.
func IncrementAPICall(cost int) {
	atomic.AddInt64(&apiCalls, 1)
	atomic.AddInt64(&apiCost, int64(cost))
}

// IncrementVideosCollected accounts raw items gathered by a strategy.
func IncrementVideosCollected(n int) {
	atomic.AddInt64(&videosSeen, int64(n))
}

// IncrementRecordsWritten accounts rows emitted to the dataset file.
func IncrementRecordsWritten(n int) {
	atomic.AddInt64(&recordsWritten, int64(n))
}

// StartReport begins periodic logging of system and pipeline statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(log)
			}
		}
	}()
}

func logReport(log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	components := map[string]map[string]int64{}
	componentStats.Range(func(k, v any) bool {
		pair := v.(*counterPair)
		components[k.(string)] = map[string]int64{
			"warns":  atomic.LoadInt64(&pair.warns),
			"errors": atomic.LoadInt64(&pair.errors),
		}
		return true
	})

	fields := Fields{
		"api_calls":       atomic.LoadInt64(&apiCalls),
		"api_cost_units":  atomic.LoadInt64(&apiCost),
		"videos_seen":     atomic.LoadInt64(&videosSeen),
		"records_written": atomic.LoadInt64(&recordsWritten),
		"components":      components,
	}
	if len(cpuPercent) > 0 {
		fields["cpu_percent"] = cpuPercent[0]
	}
	if memStats != nil {
		fields["mem_percent"] = memStats.UsedPercent
	}
	if diskStats != nil {
		fields["disk_percent"] = diskStats.UsedPercent
	}

	log.WithComponent("report").WithFields(fields).Info("collection report")
}
