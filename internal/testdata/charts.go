package testdata

// Bopeebo mixes the object and array note encodings, string numbers, a
// hold, a tempo change and trailing garbage after the closing brace.
var Bopeebo = []byte(`{
	"song": {
		"song": "Bopeebo",
		"bpm": 100,
		"speed": 1.6,
		"sections": 2,
		"keyCount": 4,
		"timescale": [4, 4],
		"notes": [
			{
				"lengthInSteps": 16,
				"mustHitSection": true,
				"sectionNotes": [
					[1200, 2, 0, 0],
					{"noteStrum": 600, "noteData": 0, "noteSus": 350},
					["1800", "5", 0, 0]
				]
			},
			{
				"lengthInSteps": 16,
				"mustHitSection": false,
				"bpm": 120,
				"changeBPM": true,
				"sectionNotes": [
					[2400, 1],
					[2000, 3, 0, 0]
				]
			}
		]
	}
}
   ;;garbage`)

// Nameless parses but is not a valid score.
var Nameless = []byte(`{"bpm": 120, "notes": []}`)

var Broken = []byte(`{"song": "broken", "notes": [`)
