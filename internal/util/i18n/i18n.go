package i18n

// T returns the message for key. Until message catalogs exist every key
// resolves to its default text.
func T(_ string, defaultValue string) string {
	return defaultValue
}
