package metrics

import (
	"testing"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"HTTPPanicsRecovered", HTTPPanicsRecovered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestEncodeMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"EncodeJobsTotal", EncodeJobsTotal},
		{"EncodeErrorsTotal", EncodeErrorsTotal},
		{"EncodeJobDuration", EncodeJobDuration},
		{"EncodeJobsInProgress", EncodeJobsInProgress},
		{"EncodeJobsQueued", EncodeJobsQueued},
		{"EncodeOutputBytes", EncodeOutputBytes},
		{"EncodeCaptureTruncated", EncodeCaptureTruncated},
		{"ConcatManifestsTotal", ConcatManifestsTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestDatabaseMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"DBConnectionsOpen", DBConnectionsOpen},
		{"DBJobRecords", DBJobRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestFilesystemMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"FilesystemOperationDuration", FilesystemOperationDuration},
		{"FilesystemOperationErrors", FilesystemOperationErrors},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"FilesystemRetrySuccess", FilesystemRetrySuccess},
		{"FilesystemRetryFailures", FilesystemRetryFailures},
		{"FilesystemStaleErrors", FilesystemStaleErrors},
		{"FilesystemRetryDuration", FilesystemRetryDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25")

	if got := value(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	if n := seriesCount(EncodeErrorsTotal); n < len(ErrorTypes) {
		t.Errorf("EncodeErrorsTotal series = %d, want at least %d", n, len(ErrorTypes))
	}
	if n := seriesCount(EncodeJobsTotal); n < 2 {
		t.Errorf("EncodeJobsTotal series = %d, want at least 2", n)
	}
	if n := seriesCount(FilesystemRetryAttempts); n < 2*len(Volumes) {
		t.Errorf("FilesystemRetryAttempts series = %d, want at least %d", n, 2*len(Volumes))
	}
}

func TestFilesystemObserverRecords(t *testing.T) {
	obs := NewFilesystemObserver()

	before := value(FilesystemStaleErrors.WithLabelValues("stat", "scratch"))
	obs.ObserveStaleError("stat", "scratch")
	after := value(FilesystemStaleErrors.WithLabelValues("stat", "scratch"))
	if after != before+1 {
		t.Errorf("FilesystemStaleErrors = %v, want %v", after, before+1)
	}

	errBefore := value(FilesystemOperationErrors.WithLabelValues("workspace", "readdir"))
	obs.ObserveOperation("workspace", "readdir", 0.01, errTest)
	obs.ObserveOperation("workspace", "readdir", 0.01, nil)
	errAfter := value(FilesystemOperationErrors.WithLabelValues("workspace", "readdir"))
	if errAfter != errBefore+1 {
		t.Errorf("FilesystemOperationErrors = %v, want %v", errAfter, errBefore+1)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
