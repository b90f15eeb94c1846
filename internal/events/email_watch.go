package events

import (
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// EmailWatchRunner periodically polls INBOX for unseen messages matching a
// trigger's from/subject substring filters, firing once per new message and
// advancing a per-trigger watermark so later polls skip messages already
// fired. The watermark is held in memory only; after a restart every unseen
// message is considered new again.
type EmailWatchRunner struct {
	registry   *Registry
	watermarks sync.Map // trigger id -> last-seen UID (uint32)
	stop       chan struct{}
	wg         sync.WaitGroup
}

// NewEmailWatchRunner builds an idle runner; Start launches one poll
// goroutine per enabled email_watch trigger.
func NewEmailWatchRunner(registry *Registry) *EmailWatchRunner {
	return &EmailWatchRunner{registry: registry, stop: make(chan struct{})}
}

func (r *EmailWatchRunner) Start() {
	for _, t := range r.registry.All() {
		if t.Type != KindEmailWatch || !t.Enabled {
			continue
		}
		r.wg.Add(1)
		go r.poll(t)
	}
}

func (r *EmailWatchRunner) poll(t *Trigger) {
	defer r.wg.Done()
	interval := 2 * time.Minute
	if secs, ok := t.Config["pollIntervalSeconds"].(float64); ok && secs > 0 {
		interval = time.Duration(secs) * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.checkOnce(t)
		}
	}
}

func (r *EmailWatchRunner) checkOnce(t *Trigger) {
	host, _ := t.Config["host"].(string)
	user, _ := t.Config["user"].(string)
	pass, _ := t.Config["password"].(string)
	fromFilter, _ := t.Config["fromContains"].(string)
	subjectFilter, _ := t.Config["subjectContains"].(string)
	if host == "" || user == "" {
		return
	}

	client, err := imapclient.DialTLS(host, nil)
	if err != nil {
		return
	}
	defer client.Close()
	if err := client.Login(user, pass).Wait(); err != nil {
		return
	}
	defer client.Logout()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return
	}

	criteria := &imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}
	searchData, err := client.Search(criteria, nil).Wait()
	if err != nil {
		return
	}

	lastSeen := uint32(0)
	if v, ok := r.watermarks.Load(t.ID); ok {
		lastSeen = v.(uint32)
	}

	uids := searchData.AllUIDs()
	fetchOptions := &imap.FetchOptions{Envelope: true, UID: true}
	for _, uid := range uids {
		if uint32(uid) <= lastSeen {
			continue
		}
		seqSet := imap.UIDSetNum(uid)
		fetchCmd := client.Fetch(seqSet, fetchOptions)
		msgs, err := fetchCmd.Collect()
		if err != nil || len(msgs) == 0 {
			continue
		}
		env := msgs[0].Envelope
		if env == nil {
			continue
		}
		from := ""
		if len(env.From) > 0 {
			from = env.From[0].Addr()
		}
		if fromFilter != "" && !strings.Contains(strings.ToLower(from), strings.ToLower(fromFilter)) {
			continue
		}
		if subjectFilter != "" && !strings.Contains(strings.ToLower(env.Subject), strings.ToLower(subjectFilter)) {
			continue
		}
		_ = r.registry.Fire(t.ID, map[string]any{
			"uid":     uint32(uid),
			"from":    from,
			"subject": env.Subject,
			"date":    env.Date,
		})
		if uint32(uid) > lastSeen {
			lastSeen = uint32(uid)
		}
	}
	r.watermarks.Store(t.ID, lastSeen)
}

// Stop ends every polling goroutine.
func (r *EmailWatchRunner) Stop() {
	close(r.stop)
	r.wg.Wait()
}
