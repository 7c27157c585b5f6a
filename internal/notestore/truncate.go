package notestore

// TruncateLimit is the character budget for note content returned in
// API responses. Stored documents are never truncated.
const TruncateLimit = 10000

// Truncate shortens content for a response while keeping useful context
// from both ends. For overwrite (and reads) it keeps the first and last
// half of the budget. For append it keeps the tail of the prior
// document plus the head and tail of the new entry, so the caller can
// see what the append landed on.
func Truncate(content string, mode Mode, existing string) string {
	return truncate(content, mode, existing, TruncateLimit)
}

func truncate(content string, mode Mode, existing string, limit int) string {
	if len(content) <= limit {
		return content
	}

	half := limit / 2
	if mode != ModeAppend || existing == "" || len(existing) >= len(content) {
		return content[:half] + "\n...\n" + content[len(content)-half:]
	}

	newEntry := content[len(existing):]
	existingBudget := limit * 2 / 10
	headBudget := limit * 4 / 10
	tailBudget := limit * 4 / 10

	var out string
	if existingBudget < len(existing) {
		out = "...(existing)\n" + existing[len(existing)-existingBudget:]
	} else {
		out = existing
	}

	if len(newEntry) <= headBudget+tailBudget {
		return out + newEntry
	}
	return out + "\n...(new entry)\n" +
		newEntry[:headBudget] + "\n...\n" + newEntry[len(newEntry)-tailBudget:]
}
