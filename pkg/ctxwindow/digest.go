package ctxwindow

import (
	"regexp"
	"strings"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/tokenizer"
)

var (
	identifierPattern = regexp.MustCompile(`[A-Z][A-Z0-9]*-[0-9]+`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	sentencePattern   = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
)

// HistoryCompressor folds old semantic blocks into a single pinned
// "[HISTORY_SUMMARY]" System message, keeping the most recent blocks
// verbatim.
type HistoryCompressor struct {
	Counter *tokenizer.ConversationTokenCounter
}

// NewHistoryCompressor builds a compressor with the given counter
// (a default ConversationTokenCounter if nil).
func NewHistoryCompressor(counter *tokenizer.ConversationTokenCounter) *HistoryCompressor {
	if counter == nil {
		counter = tokenizer.NewConversationTokenCounter(nil)
	}
	return &HistoryCompressor{Counter: counter}
}

// CompressToDigest implements C3.HistoryCompressor.compressToDigest: the
// last keepLastK blocks are kept verbatim; every earlier non-pinned block
// is folded into one "[HISTORY_SUMMARY]" block. If a pinned digest already
// exists among the old blocks, it is reused rather than re-summarized
// (idempotence, §8 invariant 5). If the produced digest plus kept blocks
// still exceeds capTokens, older digest content is consolidated
// recursively until under cap or only one digest remains.
func (h *HistoryCompressor) CompressToDigest(messages []convo.Message, capTokens, keepLastK int) ([]convo.Message, *aierrors.Error) {
	blocks := GroupIntoSemanticBlocks(messages)

	if len(blocks) <= keepLastK {
		return messages, nil
	}

	splitAt := len(blocks) - keepLastK
	older := blocks[:splitAt]
	kept := blocks[splitAt:]

	digestBlocks, nonDigest := partitionDigest(older)

	var digestText string
	if len(digestBlocks) > 0 {
		// Idempotence: reuse the newest existing digest's text rather than
		// re-summarizing the blocks it already folded in.
		digestText = digestBlocks[len(digestBlocks)-1].Messages[0].(convo.SystemMessage).Content
	}
	if len(nonDigest) > 0 {
		fresh := summarizeBlocks(nonDigest)
		digestText = mergeDigestText(digestText, fresh)
	}

	if digestText == "" {
		return Flatten(kept), nil
	}

	digestMsg := convo.SystemMessage{Content: digestText}
	result := append([]convo.Message{digestMsg}, Flatten(kept)...)

	total := h.Counter.CountConversation(convo.Conversation{Messages: result})
	for total > capTokens {
		consolidated := consolidateDigest(digestText)
		if consolidated == digestText {
			break // single part remaining; cannot shrink further
		}
		digestText = consolidated
		result = append([]convo.Message{convo.SystemMessage{Content: digestText}}, Flatten(kept)...)
		total = h.Counter.CountConversation(convo.Conversation{Messages: result})
	}

	return result, nil
}

func partitionDigest(blocks []SemanticBlock) (digests, rest []SemanticBlock) {
	for _, b := range blocks {
		if b.IsPinnedDigest() {
			digests = append(digests, b)
		} else {
			rest = append(rest, b)
		}
	}
	return digests, rest
}

func mergeDigestText(existing, fresh string) string {
	if existing == "" {
		return fresh
	}
	if fresh == "" {
		return existing
	}
	existingBody := strings.TrimPrefix(existing, historySummaryMarker+" ")
	freshBody := strings.TrimPrefix(fresh, historySummaryMarker+" ")
	return historySummaryMarker + " " + existingBody + digestPartSep + freshBody
}

const historySummaryMarker = "[HISTORY_SUMMARY]"

// summarizeBlocks produces a "[HISTORY_SUMMARY] ..." extractive summary of
// the given blocks: identifiers, URLs, error sentences, and decision
// sentences, in that order, deduplicated.
func summarizeBlocks(blocks []SemanticBlock) string {
	var text strings.Builder
	for _, b := range blocks {
		for _, msg := range b.Messages {
			text.WriteString(msg.Text())
			text.WriteString(" ")
		}
	}
	full := text.String()

	seen := make(map[string]bool)
	var parts []string

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		parts = append(parts, s)
	}

	for _, m := range identifierPattern.FindAllString(full, -1) {
		add(m)
	}
	for _, m := range urlPattern.FindAllString(full, -1) {
		add(m)
	}
	for _, sentence := range sentencePattern.FindAllString(full, -1) {
		lower := strings.ToLower(sentence)
		if strings.Contains(lower, "error") || strings.Contains(lower, "fail") {
			add(sentence)
		}
	}
	for _, sentence := range sentencePattern.FindAllString(full, -1) {
		lower := strings.ToLower(sentence)
		if strings.Contains(lower, "decide") || strings.Contains(lower, "use") {
			add(sentence)
		}
	}

	if len(parts) == 0 {
		return historySummaryMarker + " (no salient facts extracted)"
	}
	return historySummaryMarker + " " + strings.Join(parts, digestPartSep)
}

// digestPartSep joins individual extracted facts within a digest, so
// consolidateDigest can merge the oldest two facts into one without
// re-parsing sentence structure.
const digestPartSep = "; "

// consolidateDigest shrinks an over-budget digest by merging its oldest two
// extracted facts into one, reducing the part count by one. Repeated calls
// converge to a single part.
func consolidateDigest(digestText string) string {
	body := strings.TrimPrefix(digestText, historySummaryMarker+" ")
	parts := strings.Split(body, digestPartSep)
	if len(parts) <= 1 {
		return digestText
	}
	merged := make([]string, 0, len(parts)-1)
	merged = append(merged, parts[0]+" "+parts[1])
	merged = append(merged, parts[2:]...)
	return historySummaryMarker + " " + strings.Join(merged, digestPartSep)
}
