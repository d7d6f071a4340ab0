package services

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	id "github.com/emersion/go-imap-id"
	"github.com/sirupsen/logrus"

	"github.com/warterbili/InterviewManager-system/internal/config"
	"github.com/warterbili/InterviewManager-system/internal/database/models"
)

var (
	// ErrEmailNotFound indicates the requested message does not exist on the server
	ErrEmailNotFound = errors.New("email not found")
	// ErrIMAPConnectionFailed indicates IMAP connection failed
	ErrIMAPConnectionFailed = errors.New("IMAP connection failed")
)

const (
	// maxScanEmails bounds one invocation against a full-mailbox scan.
	maxScanEmails = 1000
	// fetchBatchSize is the number of whole messages pulled per round trip.
	fetchBatchSize = 50
)

// MailService fetches and normalizes messages from one IMAP mailbox.
type MailService struct {
	cfg config.EmailConfig
}

// NewMailService creates a MailService for the given mailbox account.
func NewMailService(cfg config.EmailConfig) *MailService {
	return &MailService{cfg: cfg}
}

// connect establishes a TLS IMAP connection and logs in.
func (s *MailService) connect() (*client.Client, error) {
	host := s.cfg.IMAPServer
	addr := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else {
		addr = net.JoinHostPort(host, "993")
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
	}
	c, err := client.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
	}
	c.Timeout = 5 * time.Minute

	// Some providers (188.com, 163.com) require client identification
	// before login accepts.
	if ok, _ := c.Support("ID"); ok {
		idClient := id.NewClient(c)
		if _, err := idClient.ID(id.ID{
			id.FieldName:    "InterviewManager",
			id.FieldVersion: "1.0.0",
		}); err != nil {
			log.WithError(err).Debug("IMAP ID command rejected")
		}
	}

	if err := c.Login(s.cfg.Address, s.cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("%w: login failed: %v", ErrIMAPConnectionFailed, err)
	}

	log.WithField("address", s.cfg.Address).Info("Successfully connected and logged in to email")
	return c, nil
}

// logout releases the connection; failures are logged, never propagated.
func (s *MailService) logout(c *client.Client) {
	if err := c.Logout(); err != nil {
		log.WithError(err).Warn("Error closing email connection")
	}
}

// FetchEmails scans INBOX for messages sent inside the inclusive
// [startDate, endDate] day range (both "YYYY-MM-DD"; empty means all
// messages) and returns them normalized, in server id order, along with the
// number of server-side search hits (which exceeds the record count when the
// scan cap or the self-sender filter kicks in). With excludeSelf set,
// messages whose From header contains the account address are skipped.
func (s *MailService) FetchEmails(startDate, endDate string, excludeSelf bool) ([]models.JobEmail, int, error) {
	c, err := s.connect()
	if err != nil {
		return nil, 0, err
	}
	defer s.logout(c)

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, 0, fmt.Errorf("failed to select INBOX: %w", err)
	}
	log.Info("Selected INBOX folder")

	ids, err := c.Search(buildSearchCriteria(startDate, endDate))
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}
	found := len(ids)
	log.WithField("found", found).Info("Search completed")

	var emails []models.JobEmail
	for _, m := range collectMessages(ids, func(batch []uint32) (map[uint32][]byte, error) {
		return s.fetchBatch(c, batch)
	}) {
		rec := normalizeMessage(strconv.FormatUint(uint64(m.seqNum), 10), m.raw)
		if excludeSelf && s.cfg.Address != "" && strings.Contains(rec.Sender, s.cfg.Address) {
			log.WithField("subject", rec.Subject).Info("Skipping self-sent email")
			continue
		}
		emails = append(emails, rec)
	}

	log.WithField("processed", len(emails)).Info("Email processing completed")
	return emails, found, nil
}

// rawMessage is one fetched message body keyed by its sequence number.
type rawMessage struct {
	seqNum uint32
	raw    []byte
}

// collectMessages applies the scan cap and pulls raw messages batch by
// batch. A batch whose fetch fails is logged and skipped; messages already
// collected from earlier batches are kept. Ids with no data are skipped too.
func collectMessages(ids []uint32, fetch func([]uint32) (map[uint32][]byte, error)) []rawMessage {
	if len(ids) > maxScanEmails {
		log.WithField("max", maxScanEmails).Info("Too many matches, processing first ids only")
		ids = ids[:maxScanEmails]
	}

	var out []rawMessage
	for batchIndex, batch := range chunkSeqNums(ids, fetchBatchSize) {
		raws, err := fetch(batch)
		if err != nil {
			log.WithError(err).WithField("batch", batchIndex+1).Error("Error fetching email batch data")
			continue
		}
		for _, seqNum := range batch {
			raw, ok := raws[seqNum]
			if !ok || len(raw) == 0 {
				log.WithField("imap_id", seqNum).Warn("No data found for email")
				continue
			}
			out = append(out, rawMessage{seqNum: seqNum, raw: raw})
		}
	}
	return out
}

// FetchBodyByID retrieves and normalizes a single message by its mailbox
// sequence number. The id is only meaningful against the current mailbox
// state; a missing or malformed id is reported as ErrEmailNotFound, with
// the ids actually present logged for diagnosis.
func (s *MailService) FetchBodyByID(imapID string) (string, error) {
	seqNum, err := strconv.ParseUint(imapID, 10, 32)
	if err != nil {
		log.WithField("imap_id", imapID).Error("Invalid IMAP ID format")
		return "", ErrEmailNotFound
	}

	c, err := s.connect()
	if err != nil {
		return "", err
	}
	defer s.logout(c)

	if _, err := c.Select("INBOX", false); err != nil {
		return "", fmt.Errorf("failed to select INBOX: %w", err)
	}

	raws, err := s.fetchBatch(c, []uint32{uint32(seqNum)})
	if err != nil {
		log.WithError(err).WithField("imap_id", seqNum).Error("Unable to fetch message data from server")
		s.logAvailableIDs(c)
		return "", ErrEmailNotFound
	}
	raw, ok := raws[uint32(seqNum)]
	if !ok || len(raw) == 0 {
		log.WithField("imap_id", seqNum).Error("No message data returned from server")
		s.logAvailableIDs(c)
		return "", ErrEmailNotFound
	}

	return normalizeMessage(imapID, raw).Body, nil
}

// fetchBatch pulls whole messages for one batch of sequence numbers in a
// single round trip. Any fetch error drops the whole batch.
func (s *MailService) fetchBatch(c *client.Client, batch []uint32) (map[uint32][]byte, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(batch...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, len(batch))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	raws := make(map[uint32][]byte, len(batch))
	for msg := range messages {
		if msg == nil {
			continue
		}
		for _, literal := range msg.Body {
			content, err := io.ReadAll(literal)
			if err == nil && len(content) > 0 {
				raws[msg.SeqNum] = content
			}
		}
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return raws, nil
}

// logAvailableIDs logs how many messages the mailbox holds and the most
// recent sequence numbers, to help track down stale identifiers.
func (s *MailService) logAvailableIDs(c *client.Client) {
	ids, err := c.Search(imap.NewSearchCriteria())
	if err != nil {
		log.WithError(err).Error("Unable to list mailbox ids")
		return
	}
	count := len(ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > 10 {
		ids = ids[:10]
	}
	log.WithFields(logrus.Fields{
		"available": count,
		"recent":    ids,
	}).Info("Mailbox id listing")
}

// buildSearchCriteria maps an inclusive "YYYY-MM-DD" day range to an IMAP
// SINCE/BEFORE filter; BEFORE is exclusive, so the end date advances one
// day. A missing or malformed range scans all messages.
func buildSearchCriteria(startDate, endDate string) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if startDate == "" || endDate == "" {
		return criteria
	}

	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil {
		log.WithFields(logrus.Fields{
			"start": startDate,
			"end":   endDate,
		}).Error("Invalid date format, scanning all messages")
		return criteria
	}

	criteria.Since = start
	criteria.Before = end.AddDate(0, 0, 1)
	return criteria
}

// chunkSeqNums splits ids into batches of at most size.
func chunkSeqNums(ids []uint32, size int) [][]uint32 {
	var chunks [][]uint32
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
