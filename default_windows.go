package selfstore

// Windows refuses to modify or rename the file of a running executable,
// so payloads are stored through a twin process.
func defaultUpdater(c *config) ImageUpdater {
	return c.twinUpdater()
}
