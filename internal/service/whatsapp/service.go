package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/stockmonitor/internal/config"
	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/service/reporting"
	client "github.com/mamadbah2/stockmonitor/pkg/clients/whatsapp"
)

const (
	sendTimeout        = 10 * time.Second
	maxConcurrentSends = 4
)

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	Broadcast(ctx context.Context, recipients []string, body string) ([]string, error)
}

// StockReporter produces the stock data answered to operator commands.
type StockReporter interface {
	Run(ctx context.Context, opts reporting.RunOptions) (models.StockRun, error)
	Consumption(ctx context.Context, category string, days int) (string, error)
	AlertForSKU(ctx context.Context, sku string) (models.StockAlert, error)
	Now() time.Time
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg             config.WhatsAppConfig
	client          client.Client
	reporter        StockReporter
	consumptionDays int
	logger          *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, reporter StockReporter, consumptionDays int, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if consumptionDays <= 0 {
		consumptionDays = 7
	}
	return &MetaWhatsAppService{
		cfg:             cfg,
		client:          c,
		reporter:        reporter,
		consumptionDays: consumptionDays,
		logger:          logger,
	}
}

const helpMessage = `Stock bot commands:
/stock [category] - full stock report
/critical [category] - emergency and critical items only
/consumption [days] - usage projection
/sku <SKU> - details for one item`

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message. Failures on one message do not
// stop the others; the first error is returned.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := msg.CommandText()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)

	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.Reply(ctx, cmd)
	if err != nil {
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		reply = fmt.Sprintf("Sorry, %s failed: %v", cmd.Type, err)
	}

	return s.send(ctx, msg.From, reply, false)
}

// Reply builds the answer to an operator command.
func (s *MetaWhatsAppService) Reply(ctx context.Context, cmd models.Command) (string, error) {
	switch cmd.Type {
	case models.CommandStock, models.CommandCritical:
		category := ""
		if len(cmd.Args) > 0 {
			category = cmd.Args[0]
		}
		run, err := s.reporter.Run(ctx, reporting.RunOptions{Category: category})
		if err != nil {
			return "", err
		}
		return reporting.FormatAlerts(run, reporting.FormatOptions{CriticalOnly: cmd.Type == models.CommandCritical}), nil
	case models.CommandConsumption:
		days := s.consumptionDays
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n <= 0 {
				return "", fmt.Errorf("days must be a positive number, got %q", cmd.Args[0])
			}
			days = n
		}
		return s.reporter.Consumption(ctx, "", days)
	case models.CommandSKU:
		if len(cmd.Args) == 0 {
			return "", errors.New("usage: /sku <SKU>")
		}
		alert, err := s.reporter.AlertForSKU(ctx, cmd.Args[0])
		if err != nil {
			return "", err
		}
		return reporting.CriticalAlert(alert, s.reporter.Now()), nil
	default:
		return helpMessage, nil
	}
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

// Broadcast sends body to every recipient concurrently and returns the
// recipients that received it. An error is returned if any delivery failed.
func (s *MetaWhatsAppService) Broadcast(ctx context.Context, recipients []string, body string) ([]string, error) {
	if len(recipients) == 0 {
		return nil, errors.New("no recipients configured")
	}

	var (
		mu   sync.Mutex
		sent []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSends)

	for _, to := range recipients {
		to := to // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			if err := s.send(gctx, to, body, false); err != nil {
				return fmt.Errorf("deliver to %s: %w", to, err)
			}
			mu.Lock()
			sent = append(sent, to)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return sent, err
}

// send delivers body, split into as many messages as the API length limit requires.
func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	for _, part := range splitMessage(body, client.MaxTextLength) {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
		id, err := s.client.SendText(ctxWithTimeout, to, part, previewURL)
		cancel()
		if err != nil {
			return err
		}
		s.logger.Debug("message sent", zap.String("to", to), zap.String("message_id", id))
	}
	return nil
}

// splitMessage cuts body into parts of at most limit bytes, preferring line
// breaks and never splitting a UTF-8 sequence.
func splitMessage(body string, limit int) []string {
	if len(body) <= limit {
		return []string{body}
	}

	var parts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(body, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()

	return parts
}
