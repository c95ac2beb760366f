package helpers

// SafeLastN returns the last n elements of the slice, or the whole slice
// when it is shorter. Used to trim chat history before a completion call.
func SafeLastN[T any](slice []T, lastN int) []T {
	if len(slice) > lastN {
		return slice[len(slice)-lastN:]
	}
	return slice
}
