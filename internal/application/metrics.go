package application

// Metrics receives counters from application services. A nil Metrics passed
// to a constructor is replaced with a no-op implementation.
type Metrics interface {
	UploadCompleted(bytes int64)
	UploadExpired()
	ResultsRendered(n int)
	ResultsFailed(n int)
}

type nopMetrics struct{}

func (nopMetrics) UploadCompleted(int64) {}
func (nopMetrics) UploadExpired()        {}
func (nopMetrics) ResultsRendered(int)   {}
func (nopMetrics) ResultsFailed(int)     {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
