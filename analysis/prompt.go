package analysis

// Field describes one value the model is asked to produce. Key is the JSON
// key in both the model reply and the response body; Label is the substring
// the line-scan fallback looks for when the reply is not JSON.
type Field struct {
	Key   string
	Label string
}

// ResultFields is the analysis field table for this deployment. Adding a
// field here extends the prompt contract, the parser and the response body
// together.
var ResultFields = []Field{
	{Key: "commonName", Label: "common name"},
	{Key: "scientificName", Label: "scientific name"},
}

// UnknownValue fills any field the model reply did not yield.
const UnknownValue = "unknown"

const instruction = `Identify the plant in this photo. Respond with a JSON object containing exactly two keys: "commonName" (the plant's common name in English) and "scientificName" (its Latin binomial name). Respond with the JSON object only, no other text.`

// Request is the opaque payload handed to the vision model.
type Request struct {
	Instruction  string
	ImageDataURL string
}

// BuildRequest assembles the model-call payload for a normalized image.
func BuildRequest(img *NormalizedImage) Request {
	return Request{
		Instruction:  instruction,
		ImageDataURL: img.DataURL(),
	}
}
