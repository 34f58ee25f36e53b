// Package search indexes meeting transcripts with bluge.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"meet-lab/domain/meeting"
	"sort"
	"strconv"

	"github.com/blugelabs/bluge"
)

const (
	fieldMeeting = "meeting"
	fieldSeq     = "seq"
	fieldSpeaker = "speaker"
	fieldText    = "text"

	DefaultLimit = 50
	MaxLimit     = 1000
)

// TranscriptIndex is a full-text index of captions, partitioned by meeting.
// Documents are keyed by meeting and sequence number, so reindexing a caption is idempotent.
type TranscriptIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewTranscriptIndex(writer *bluge.Writer, log *slog.Logger) *TranscriptIndex {
	return &TranscriptIndex{writer: writer, log: log}
}

func docID(id meeting.MeetingID, seq uint64) string {
	return fmt.Sprintf("%s:%020d", id, seq)
}

func (i *TranscriptIndex) Index(captions ...meeting.CaptionEvent) error {
	if len(captions) == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for _, c := range captions {
		doc := bluge.NewDocument(docID(c.MeetingID, c.Seq)).
			AddField(bluge.NewKeywordField(fieldMeeting, c.MeetingID.String())).
			AddField(bluge.NewKeywordField(fieldSeq, strconv.FormatUint(c.Seq, 10)).StoreValue()).
			AddField(bluge.NewKeywordField(fieldSpeaker, meeting.NameKey(c.Speaker))).
			AddField(bluge.NewTextField(fieldText, c.Text))
		batch.Update(doc.ID(), doc)
	}
	return i.writer.Batch(batch)
}

// Search returns the sequence numbers of the captions of a meeting matching query,
// in ascending order. A limit outside (0, MaxLimit] falls back to DefaultLimit.
func (i *TranscriptIndex) Search(ctx context.Context, id meeting.MeetingID, query string, limit int) ([]uint64, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(id.String()).SetField(fieldMeeting)).
		AddMust(bluge.NewMatchQuery(query).SetField(fieldText))

	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var seqs []uint64
	match, err := dmi.Next()
	for err == nil && match != nil {
		var seq uint64
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldSeq {
				seq, _ = strconv.ParseUint(string(value), 10, 64)
				return false
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		if seq > 0 {
			seqs = append(seqs, seq)
		}
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(seqs, func(a, b int) bool { return seqs[a] < seqs[b] })
	i.log.Debug("Transcript searched", "meeting_id", id, "hits", len(seqs))
	return seqs, nil
}

// Drop removes the captions 1..lastSeq of an ended meeting.
func (i *TranscriptIndex) Drop(id meeting.MeetingID, lastSeq uint64) error {
	if lastSeq == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for seq := uint64(1); seq <= lastSeq; seq++ {
		batch.Delete(bluge.Identifier(docID(id, seq)))
	}
	if err := i.writer.Batch(batch); err != nil {
		return err
	}
	i.log.Debug("Transcript dropped from index", "meeting_id", id, "captions", lastSeq)
	return nil
}
