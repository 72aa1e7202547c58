package deliver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"world-digest/internal/domain/entity"
	"world-digest/internal/infra/notifier"
	"world-digest/internal/usecase/deliver"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubChannel struct {
	mu       sync.Mutex
	name     string
	enabled  bool
	sendErr  error
	messages []string
}

func (c *stubChannel) Name() string    { return c.name }
func (c *stubChannel) IsEnabled() bool { return c.enabled }

func (c *stubChannel) Send(ctx context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return c.sendErr
}

type stubDigestRepo struct {
	mu      sync.Mutex
	sentIDs []string
}

func (r *stubDigestRepo) Create(ctx context.Context, d *entity.Digest) error { return nil }

func (r *stubDigestRepo) LatestForRegion(ctx context.Context, region string) (*entity.Digest, error) {
	return nil, nil
}

func (r *stubDigestRepo) MarkSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sentIDs = append(r.sentIDs, id)
	return nil
}

func (r *stubDigestRepo) CountDigests(ctx context.Context) (int64, error) { return 0, nil }

func TestDeliver_GlobalFirstThenRegionsInOrder(t *testing.T) {
	ch := &stubChannel{name: "telegram", enabled: true}
	repo := &stubDigestRepo{}

	cfg := formatterConfig()
	cfg.Telegram.SendDelaySeconds = 0

	svc := deliver.NewService(cfg, []deliver.Channel{ch}, repo, testLogger())

	global := entity.NewDigest(entity.GlobalRegion, "Мировой дайджест", "события")
	usa := entity.NewDigest("usa", "США", "сша")
	russia := entity.NewDigest("russia", "Россия", "россия")

	err := svc.Deliver(context.Background(), global, map[string]*entity.Digest{
		"russia": russia,
		"usa":    usa,
	})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if len(ch.messages) != 3 {
		t.Fatalf("sent %d messages, want 3", len(ch.messages))
	}
	// Global first, then configured region order usa, russia.
	if got := ch.messages[0]; !containsAll(got, "МИРОВОЙ ДАЙДЖЕСТ") {
		t.Errorf("first message should be the global digest: %q", got)
	}
	if got := ch.messages[1]; !containsAll(got, "США") {
		t.Errorf("second message should be usa: %q", got)
	}
	if got := ch.messages[2]; !containsAll(got, "Россия") {
		t.Errorf("third message should be russia: %q", got)
	}

	if len(repo.sentIDs) != 3 {
		t.Errorf("marked sent %d digests, want 3", len(repo.sentIDs))
	}
}

func TestDeliver_FailedDigestDoesNotStopOthers(t *testing.T) {
	failing := &stubChannel{name: "telegram", enabled: true, sendErr: errors.New("api down")}
	repo := &stubDigestRepo{}

	cfg := formatterConfig()
	cfg.Telegram.SendDelaySeconds = 0

	svc := deliver.NewService(cfg, []deliver.Channel{failing}, repo, testLogger())

	err := svc.Deliver(context.Background(), nil, map[string]*entity.Digest{
		"usa":    entity.NewDigest("usa", "США", "a"),
		"russia": entity.NewDigest("russia", "Россия", "b"),
	})
	if err == nil {
		t.Fatal("Deliver() expected first error to surface")
	}
	if len(failing.messages) != 2 {
		t.Errorf("attempted %d sends, want 2", len(failing.messages))
	}
	if len(repo.sentIDs) != 0 {
		t.Errorf("no digest should be marked sent, got %v", repo.sentIDs)
	}
}

func TestDeliver_NothingToDeliver(t *testing.T) {
	svc := deliver.NewService(formatterConfig(), nil, &stubDigestRepo{}, testLogger())

	err := svc.Deliver(context.Background(), nil, nil)
	if !errors.Is(err, deliver.ErrNothingToDeliver) {
		t.Errorf("error = %v, want ErrNothingToDeliver", err)
	}
}

func TestDeliverDigest_SkipsDisabledChannels(t *testing.T) {
	disabled := &stubChannel{name: "telegram", enabled: false}
	enabled := &stubChannel{name: "backup", enabled: true}
	repo := &stubDigestRepo{}

	svc := deliver.NewService(formatterConfig(), []deliver.Channel{disabled, enabled}, repo, testLogger())

	d := entity.NewDigest("usa", "США", "текст")
	if err := svc.DeliverDigest(context.Background(), d); err != nil {
		t.Fatalf("DeliverDigest() error = %v", err)
	}

	if len(disabled.messages) != 0 {
		t.Error("disabled channel should not receive sends")
	}
	if len(enabled.messages) != 1 {
		t.Errorf("enabled channel received %d sends, want 1", len(enabled.messages))
	}
	if len(repo.sentIDs) != 1 || repo.sentIDs[0] != d.ID {
		t.Errorf("sentIDs = %v, want [%s]", repo.sentIDs, d.ID)
	}
}

func TestDeliverDigest_NoEnabledChannels(t *testing.T) {
	disabled := &stubChannel{name: "telegram", enabled: false}
	svc := deliver.NewService(formatterConfig(), []deliver.Channel{disabled}, &stubDigestRepo{}, testLogger())

	if err := svc.DeliverDigest(context.Background(), entity.NewDigest("usa", "США", "т")); err == nil {
		t.Fatal("DeliverDigest() expected error when no channel is enabled")
	}
}

func TestTelegramChannel_Disabled(t *testing.T) {
	ch := deliver.NewTelegramChannel(notifier.TelegramConfig{Enabled: false}, testLogger())

	if ch.IsEnabled() {
		t.Error("IsEnabled() = true for disabled config")
	}
	if err := ch.Send(context.Background(), "сообщение"); !errors.Is(err, deliver.ErrChannelDisabled) {
		t.Errorf("Send() error = %v, want ErrChannelDisabled", err)
	}
}

func TestTelegramChannel_SendBroadcasts(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	ch := deliver.NewTelegramChannel(notifier.TelegramConfig{
		Enabled:    true,
		BotToken:   "123:token",
		ChatIDs:    []string{"-100", "-200"},
		APIBaseURL: server.URL,
		Timeout:    2 * time.Second,
	}, testLogger())

	if ch.Name() != "telegram" {
		t.Errorf("Name() = %q", ch.Name())
	}
	if err := ch.Send(context.Background(), "дайджест"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 2 {
		t.Errorf("broadcast hit %d chats, want 2", len(paths))
	}
}

func containsAll(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
