package convo

import "sort"

// FoldChunks reconstructs the canonical Completion a stream of chunks
// represents: concatenated content, tool calls merged by Index and ordered
// by ascending Index, and the final reported usage/finish
// reason. Every provider's streaming client calls this once the stream
// closes (§8 invariant 2).
func FoldChunks(chunks []StreamedChunk) Completion {
	var content string
	var usage *TokenUsage
	var finish FinishReason

	order := make([]int, 0)
	byIndex := make(map[int]*PartialToolCall)

	for _, c := range chunks {
		content += c.Content
		if c.Usage != nil {
			usage = c.Usage
		}
		if c.FinishReason != "" {
			finish = c.FinishReason
		}
		if c.ToolCall == nil {
			continue
		}
		idx := c.ToolCall.Index
		existing, ok := byIndex[idx]
		if !ok {
			cp := *c.ToolCall
			byIndex[idx] = &cp
			order = append(order, idx)
			continue
		}
		if c.ToolCall.ID != "" {
			existing.ID = c.ToolCall.ID
		}
		if c.ToolCall.Name != "" {
			existing.Name = c.ToolCall.Name
		}
		existing.ArgumentsJSON += c.ToolCall.ArgumentsJSON
	}

	sort.Ints(order)
	toolCalls := make([]ToolCall, 0, len(order))
	for _, idx := range order {
		pc := byIndex[idx]
		toolCalls = append(toolCalls, ToolCall{
			ID:        pc.ID,
			Name:      pc.Name,
			Arguments: pc.ArgumentsJSON,
		})
	}

	return Completion{
		Content:      content,
		ToolCalls:    toolCalls,
		Usage:        usage,
		FinishReason: finish,
	}
}
