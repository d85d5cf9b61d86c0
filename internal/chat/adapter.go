package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendai/attendai/internal/daterange"
	"github.com/attendai/attendai/internal/metrics"
	"github.com/attendai/attendai/internal/report"
	"github.com/attendai/attendai/internal/security"
	"github.com/attendai/attendai/internal/service"
	"github.com/attendai/attendai/internal/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Translator turns a question into SQL.
type Translator interface {
	Translate(ctx context.Context, question, dates string) (string, error)
}

// Executor runs SQL and reports failures as a chat message.
type Executor interface {
	ExecuteReport(ctx context.Context, sql string) (*service.ResultSet, string)
}

// Renderer produces the PDF export.
type Renderer interface {
	RenderPDF(question, dates string, rs *service.ResultSet) ([]byte, error)
}

// Adapter drives one chat turn through the reporting pipeline. A
// conversation is idle until a query returns rows; from then on its latest
// result is cached and can be exported.
type Adapter struct {
	translator    Translator
	executor      Executor
	renderer      Renderer
	store         session.Store
	sqlVal        *security.SQLValidator
	promptVal     *security.PromptValidator
	auditLogger   *security.AuditLogger
	fallbackDates string

	renders singleflight.Group
}

// Deps bundles the adapter's collaborators.
type Deps struct {
	Translator    Translator
	Executor      Executor
	Renderer      Renderer
	Store         session.Store
	SQLValidator  *security.SQLValidator
	Prompts       *security.PromptValidator
	Audit         *security.AuditLogger
	FallbackDates string
}

// NewAdapter wires an adapter. Missing validators and logger get defaults.
func NewAdapter(d Deps) *Adapter {
	if d.SQLValidator == nil {
		d.SQLValidator = security.NewSQLValidator()
	}
	if d.Prompts == nil {
		d.Prompts = security.NewPromptValidator(0)
	}
	if d.Audit == nil {
		d.Audit = security.NewAuditLogger(false)
	}
	if d.Renderer == nil {
		d.Renderer = report.NewRenderer(nil)
	}
	return &Adapter{
		translator:    d.Translator,
		executor:      d.Executor,
		renderer:      d.Renderer,
		store:         d.Store,
		sqlVal:        d.SQLValidator,
		promptVal:     d.Prompts,
		auditLogger:   d.Audit,
		fallbackDates: d.FallbackDates,
	}
}

// Welcome is the greeting for a new conversation.
func (a *Adapter) Welcome() Message {
	return say(MsgWelcome)
}

// HandleMessage answers one user question.
func (a *Adapter) HandleMessage(ctx context.Context, conversationID, text string) []Message {
	if strings.TrimSpace(text) == "" {
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return []Message{say(MsgEmptyQuery)}
	}

	if vr := a.promptVal.Validate(text); !vr.Valid {
		log.Warn().Str("conversation_id", conversationID).Str("reason", vr.Message).Msg("prompt rejected")
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return []Message{say(prefixRejected + vr.Message)}
	}

	question, r, _ := daterange.Extract(text)
	dates := r.OrDefault(a.fallbackDates)

	start := time.Now()
	sql, err := a.translator.Translate(ctx, question, dates)
	metrics.StageDuration.WithLabelValues(metrics.StageTranslate).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("translation failed")
		a.auditLogger.LogTranslation(question, conversationID, "", false, time.Since(start).Milliseconds())
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return []Message{say(prefixError + err.Error())}
	}

	guardErr := a.sqlVal.Check(sql)
	a.auditLogger.LogTranslation(question, conversationID, sql, guardErr == nil, time.Since(start).Milliseconds())

	rs, body := a.run(ctx, conversationID, question, dates, sql, guardErr)
	out := []Message{say(body)}

	if rs.Empty() {
		return append(out, say(MsgNoPDF))
	}

	err = a.store.Put(ctx, conversationID, &session.Entry{
		Query:     question,
		Dates:     dates,
		Result:    rs,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("cache result failed")
		return append(out, say(prefixError+err.Error()))
	}

	return append(out, Message{
		Role:    RoleAssistant,
		Content: MsgReportReady,
		Actions: []Action{{Name: ActionDownloadPDF, Label: "Download PDF"}},
	})
}

// run executes guarded SQL and formats the chat report.
func (a *Adapter) run(ctx context.Context, conversationID, question, dates, sql string, guardErr error) (*service.ResultSet, string) {
	if guardErr != nil {
		log.Warn().Err(guardErr).Str("conversation_id", conversationID).Msg("generated SQL rejected")
		metrics.SQLRejected.Inc()
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		a.auditLogger.LogQuery(sql, conversationID, 0, 0, false, guardErr.Error())
		return &service.ResultSet{}, service.ReportError(guardErr)
	}

	start := time.Now()
	rs, errMsg := a.executor.ExecuteReport(ctx, sql)
	took := time.Since(start)
	metrics.StageDuration.WithLabelValues(metrics.StageExecute).Observe(took.Seconds())
	a.auditLogger.LogQuery(sql, conversationID, took.Milliseconds(), rs.Len(), errMsg == "", errMsg)

	if errMsg != "" {
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return &service.ResultSet{}, errMsg
	}

	text, ok := report.FormatText(question, dates, rs)
	if !ok {
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeNoData).Inc()
	} else {
		metrics.TurnsTotal.WithLabelValues(metrics.OutcomeReport).Inc()
	}

	log.Info().
		Str("conversation_id", conversationID).
		Int("rows", rs.Len()).
		Dur("execute_ms", took).
		Msg("report generated")
	return rs, text
}

// HandleAction runs a button press.
func (a *Adapter) HandleAction(ctx context.Context, conversationID, action string) []Message {
	if action != ActionDownloadPDF {
		return []Message{say(prefixUnknownVerb + action)}
	}

	pdf, err := a.PDF(ctx, conversationID)
	if errors.Is(err, session.ErrNotFound) {
		return []Message{say(MsgNoReport)}
	}
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("pdf export failed")
		return []Message{say(prefixPDFError + err.Error())}
	}

	metrics.TurnsTotal.WithLabelValues(metrics.OutcomePDF).Inc()
	return []Message{{
		Role:    RoleAssistant,
		Content: MsgHereIsPDF,
		Files:   []File{{Name: report.FileName, MIME: report.MIMEType, Content: pdf}},
	}}
}

// PDF renders the cached result of a conversation. Concurrent calls for the
// same cached entry share one render.
func (a *Adapter) PDF(ctx context.Context, conversationID string) ([]byte, error) {
	e, err := a.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%d", conversationID, e.CreatedAt.UnixNano())
	v, err, shared := a.renders.Do(key, func() (interface{}, error) {
		start := time.Now()
		b, err := a.renderer.RenderPDF(e.Query, e.Dates, e.Result)
		metrics.StageDuration.WithLabelValues(metrics.StageRenderPDF).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		metrics.PDFBytes.Observe(float64(len(b)))
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("conversation_id", conversationID).Msg("pdf render shared")
	}
	return v.([]byte), nil
}

// Reset forgets the cached result.
func (a *Adapter) Reset(ctx context.Context, conversationID string) error {
	return a.store.Delete(ctx, conversationID)
}
