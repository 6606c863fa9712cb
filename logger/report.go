package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net" //cloudwatch

	"github.com/aws/aws-sdk-go-v2/aws"                              //cloudwatch
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types" //cloudwatch
	"github.com/sirupsen/logrus"
)

type endpointStat struct {
	requests int64
	bytes    int64
}

var (
	errorsAPI      int64
	errorsSnapshot int64
	warnsAPI       int64
	warnsSnapshot  int64
	fixturesRead   int64
	oddsRead       int64
	archiveWrites  int64
	s3Uploads      int64
	endpoints      sync.Map // map[string]*endpointStat
)

func recordWarn(component string) {
	if strings.Contains(component, "api") {
		atomic.AddInt64(&warnsAPI, 1)
	} else if strings.Contains(component, "snapshot") || strings.Contains(component, "mirror") {
		atomic.AddInt64(&warnsSnapshot, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "api") {
		atomic.AddInt64(&errorsAPI, 1)
	} else if strings.Contains(component, "snapshot") || strings.Contains(component, "mirror") {
		atomic.AddInt64(&errorsSnapshot, 1)
	}
}

// levelHook feeds warn and error counts into the runtime report.
type levelHook struct{}

func (levelHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.WarnLevel, logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

func (levelHook) Fire(entry *logrus.Entry) error {
	component, _ := entry.Data["component"].(string)
	if entry.Level == logrus.WarnLevel {
		recordWarn(component)
	} else {
		recordError(component)
	}
	return nil
}

// IncrementFixturesRead counts fixture records fetched from the API.
func IncrementFixturesRead(n int) {
	atomic.AddInt64(&fixturesRead, int64(n))
}

// IncrementOddsRead counts odds payloads fetched from the API.
func IncrementOddsRead(n int) {
	atomic.AddInt64(&oddsRead, int64(n))
}

// IncrementArchiveWrite counts persisted snapshot archives.
func IncrementArchiveWrite(size int64) {
	atomic.AddInt64(&archiveWrites, 1)
	recordEndpoint("archive_write", int(size))
}

// IncrementS3Upload counts objects mirrored to S3.
func IncrementS3Upload(size int64) {
	atomic.AddInt64(&s3Uploads, 1)
	recordEndpoint("s3_upload", int(size))
}

// RecordEndpoint tracks request counts and payload bytes per API endpoint.
func RecordEndpoint(name string, size int) {
	recordEndpoint(name, size)
}

func recordEndpoint(name string, size int) {
	v, _ := endpoints.LoadOrStore(name, &endpointStat{})
	es := v.(*endpointStat)
	atomic.AddInt64(&es.requests, 1)
	atomic.AddInt64(&es.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and collection statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	endpointData := map[string]map[string]int64{}
	endpoints.Range(func(k, v any) bool {
		name := k.(string)
		es := v.(*endpointStat)
		endpointData[name] = map[string]int64{
			"requests": atomic.LoadInt64(&es.requests),
			"bytes":    atomic.LoadInt64(&es.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_api":      atomic.LoadInt64(&errorsAPI),
		"errors_snapshot": atomic.LoadInt64(&errorsSnapshot),
		"warns_api":       atomic.LoadInt64(&warnsAPI),
		"warns_snapshot":  atomic.LoadInt64(&warnsSnapshot),
		"fixtures_read":   atomic.LoadInt64(&fixturesRead),
		"odds_read":       atomic.LoadInt64(&oddsRead),
		"archive_writes":  atomic.LoadInt64(&archiveWrites),
		"s3_uploads":      atomic.LoadInt64(&s3Uploads),
		"goroutines":      runtime.NumGoroutine(),
		"cpu_percent":     cpuPct,
		"memory_mb":       int64(memStats.Used) / 1024 / 1024,
		"disk_mb":         int64(diskStats.Used) / 1024 / 1024,
		"endpoints":       endpointData,
		"net_bytes_sent":  int64(bytesSent),
		"net_bytes_recv":  int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-ErrorsAPI"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_api"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-ErrorsSnapshot"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_snapshot"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-WarnsAPI"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_api"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-WarnsSnapshot"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_snapshot"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-FixturesRead"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["fixtures_read"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-OddsRead"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["odds_read"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-ArchiveWrites"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["archive_writes"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-S3Uploads"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["s3_uploads"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("Oddsflow-NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range endpointData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("Oddsflow-EndpointRequests"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Endpoint"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["requests"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("Oddsflow-EndpointBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Endpoint"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
