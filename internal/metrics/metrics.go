package metrics

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	startTime time.Time

	messagesRouted     atomic.Int64
	parsesSucceeded    atomic.Int64
	parsesFailed       atomic.Int64
	transactionsAdded  atomic.Int64
	transactionsUndone atomic.Int64
	notUnderstood      atomic.Int64

	intentCounts map[string]*atomic.Int64
	intentLock   sync.Mutex

	responseTimes     []time.Duration
	responseTimesLock sync.Mutex
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

func New() *Metrics {
	return &Metrics{
		startTime:     time.Now(),
		responseTimes: make([]time.Duration, 0, 1000),
		intentCounts:  make(map[string]*atomic.Int64),
	}
}

func (m *Metrics) RecordMessage(intent string) {
	m.messagesRouted.Add(1)

	m.intentLock.Lock()
	defer m.intentLock.Unlock()
	if m.intentCounts[intent] == nil {
		m.intentCounts[intent] = &atomic.Int64{}
	}
	m.intentCounts[intent].Add(1)
}

func (m *Metrics) RecordParse(success bool) {
	if success {
		m.parsesSucceeded.Add(1)
	} else {
		m.parsesFailed.Add(1)
	}
}

func (m *Metrics) RecordAdd() {
	m.transactionsAdded.Add(1)
}

func (m *Metrics) RecordUndo() {
	m.transactionsUndone.Add(1)
}

func (m *Metrics) RecordNotUnderstood() {
	m.notUnderstood.Add(1)
}

func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseTimesLock.Lock()
	defer m.responseTimesLock.Unlock()

	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
}

type Snapshot struct {
	Uptime             time.Duration    `json:"uptime"`
	MessagesRouted     int64            `json:"messages_routed"`
	ParsesSucceeded    int64            `json:"parses_succeeded"`
	ParsesFailed       int64            `json:"parses_failed"`
	TransactionsAdded  int64            `json:"transactions_added"`
	TransactionsUndone int64            `json:"transactions_undone"`
	NotUnderstood      int64            `json:"not_understood"`
	IntentCounts       map[string]int64 `json:"intent_counts"`
	AvgResponseTime    time.Duration    `json:"avg_response_time"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:             time.Since(m.startTime),
		MessagesRouted:     m.messagesRouted.Load(),
		ParsesSucceeded:    m.parsesSucceeded.Load(),
		ParsesFailed:       m.parsesFailed.Load(),
		TransactionsAdded:  m.transactionsAdded.Load(),
		TransactionsUndone: m.transactionsUndone.Load(),
		NotUnderstood:      m.notUnderstood.Load(),
		IntentCounts:       make(map[string]int64),
	}

	m.intentLock.Lock()
	for k, v := range m.intentCounts {
		s.IntentCounts[k] = v.Load()
	}
	m.intentLock.Unlock()

	m.responseTimesLock.Lock()
	if len(m.responseTimes) > 0 {
		var total time.Duration
		for _, rt := range m.responseTimes {
			total += rt
		}
		s.AvgResponseTime = total / time.Duration(len(m.responseTimes))
	}
	m.responseTimesLock.Unlock()

	return s
}

func (m *Metrics) Prometheus() string {
	var sb strings.Builder

	sb.WriteString("# HELP paisabot_uptime_seconds Time since server start\n")
	sb.WriteString("# TYPE paisabot_uptime_seconds gauge\n")
	sb.WriteString("paisabot_uptime_seconds " + strconv.FormatInt(int64(time.Since(m.startTime).Seconds()), 10) + "\n\n")

	sb.WriteString("# HELP paisabot_messages_routed_total Chat messages routed\n")
	sb.WriteString("# TYPE paisabot_messages_routed_total counter\n")
	sb.WriteString("paisabot_messages_routed_total " + strconv.FormatInt(m.messagesRouted.Load(), 10) + "\n\n")

	sb.WriteString("# HELP paisabot_parses_succeeded_total Utterances parsed into transactions\n")
	sb.WriteString("# TYPE paisabot_parses_succeeded_total counter\n")
	sb.WriteString("paisabot_parses_succeeded_total " + strconv.FormatInt(m.parsesSucceeded.Load(), 10) + "\n\n")

	sb.WriteString("# HELP paisabot_parses_failed_total Utterances missing a usable amount\n")
	sb.WriteString("# TYPE paisabot_parses_failed_total counter\n")
	sb.WriteString("paisabot_parses_failed_total " + strconv.FormatInt(m.parsesFailed.Load(), 10) + "\n\n")

	sb.WriteString("# HELP paisabot_transactions_added_total Transactions added via chat\n")
	sb.WriteString("# TYPE paisabot_transactions_added_total counter\n")
	sb.WriteString("paisabot_transactions_added_total " + strconv.FormatInt(m.transactionsAdded.Load(), 10) + "\n\n")

	sb.WriteString("# HELP paisabot_transactions_undone_total Transactions reverted with undo\n")
	sb.WriteString("# TYPE paisabot_transactions_undone_total counter\n")
	sb.WriteString("paisabot_transactions_undone_total " + strconv.FormatInt(m.transactionsUndone.Load(), 10) + "\n\n")

	sb.WriteString("# HELP paisabot_not_understood_total Messages no rule matched\n")
	sb.WriteString("# TYPE paisabot_not_understood_total counter\n")
	sb.WriteString("paisabot_not_understood_total " + strconv.FormatInt(m.notUnderstood.Load(), 10) + "\n")

	m.intentLock.Lock()
	if len(m.intentCounts) > 0 {
		sb.WriteString("\n# HELP paisabot_intent_total Messages per classified intent\n")
		sb.WriteString("# TYPE paisabot_intent_total counter\n")
		for intent, count := range m.intentCounts {
			sb.WriteString("paisabot_intent_total{intent=\"" + intent + "\"} " + strconv.FormatInt(count.Load(), 10) + "\n")
		}
	}
	m.intentLock.Unlock()

	return sb.String()
}
