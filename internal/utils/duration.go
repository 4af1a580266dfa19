package utils

// Minutes returns the given number of minutes as seconds
func Minutes(count int) int {
	return 60 * count
}

// Hours returns the given number of hours as seconds
func Hours(count int) int {
	return 60 * Minutes(count)
}

// Days returns the given number of days as seconds
func Days(count int) int {
	return 24 * Hours(count)
}
