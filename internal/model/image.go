package model

// Image is a binary image stored inline in the `images` table as a
// base64 string.  List endpoints return only the metadata; the
// payload is included when a single image is fetched by name.
type Image struct {
	IDImage uint64 `json:"id_image"`  // images.id_image
	Name    string `json:"name"`      // images.name
	Data    string `json:"imagescol"` // images.imagescol (base64 payload)
}
