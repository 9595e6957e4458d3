package globe

// Project maps a latitude/longitude pair in degrees onto an equirectangular
// canvas of the given size. The north pole maps to y=0 and the south pole to
// y=height. Longitude is corrected by a single wrap of 360°, so inputs are
// expected within [-540, 540]. The horizontal span is widened by SeamPadding
// pixels so the antimeridian seam stays covered once the canvas is wrapped
// onto a sphere.
func Project(lat, lon float64, width, height int) (x, y float64) {
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	x = (lon + 180) / 360 * (float64(width) + SeamPadding)
	y = (90 - lat) / 180 * float64(height)
	return x, y
}
