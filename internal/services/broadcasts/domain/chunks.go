package domain

// DeliveryChunkSize is the number of recipients sent per edge call.
const DeliveryChunkSize = 200

// ChunkRecipients splits recipients into fixed-size slices for delivery.
// The last chunk may be shorter; no recipient is dropped or duplicated.
func ChunkRecipients(recipients []string, size int) [][]string {
	if size <= 0 {
		size = DeliveryChunkSize
	}
	if len(recipients) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(recipients)+size-1)/size)
	for start := 0; start < len(recipients); start += size {
		end := start + size
		if end > len(recipients) {
			end = len(recipients)
		}
		chunks = append(chunks, recipients[start:end])
	}
	return chunks
}
