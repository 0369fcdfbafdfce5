package language

const defaultVoice = "nova"

// pinyinTones folds toned pinyin vowels onto their base vowel.
var pinyinTones = map[rune]rune{
	'ā': 'a', 'á': 'a', 'ǎ': 'a', 'à': 'a',
	'ē': 'e', 'é': 'e', 'ě': 'e', 'è': 'e',
	'ī': 'i', 'í': 'i', 'ǐ': 'i', 'ì': 'i',
	'ō': 'o', 'ó': 'o', 'ǒ': 'o', 'ò': 'o',
	'ū': 'u', 'ú': 'u', 'ǔ': 'u', 'ù': 'u',
	'ǖ': 'u', 'ǘ': 'u', 'ǚ': 'u', 'ǜ': 'u', 'ü': 'u',
}

// Builtin returns the profiles shipped with the service.
func Builtin() []Profile {
	return []Profile{
		{Code: "en", Name: "English", Script: ScriptLatin, DefaultVoice: "nova"},
		{Code: "es", Name: "Spanish", Script: ScriptLatin, DefaultVoice: "shimmer"},
		{Code: "fr", Name: "French", Script: ScriptLatin, DefaultVoice: "alloy"},
		{Code: "de", Name: "German", Script: ScriptLatin, DefaultVoice: "echo"},
		{Code: "it", Name: "Italian", Script: ScriptLatin, DefaultVoice: "fable"},
		{Code: "pt", Name: "Portuguese", Script: ScriptLatin, DefaultVoice: "shimmer"},
		{
			Code:         "zh",
			Name:         "Chinese (Mandarin)",
			Script:       ScriptHan,
			DefaultVoice: "nova",
			Rules:        NormalizeRules{Replace: pinyinTones},
			Tip: &Tip{
				Type:        "tones",
				Title:       "Practice the four tones",
				Description: "Mandarin uses tones to change meaning. Say the word slowly and exaggerate the rise and fall of each syllable.",
			},
		},
		{
			Code:         "ja",
			Name:         "Japanese",
			Script:       ScriptKana,
			DefaultVoice: "shimmer",
			Rules:        NormalizeRules{Strip: []rune{'っ', 'ッ'}},
			Tip: &Tip{
				Type:        "pitch_accent",
				Title:       "Listen for pitch and long sounds",
				Description: "Japanese syllables are even in length. Hold double consonants and long vowels for a full beat.",
			},
		},
		{Code: "ko", Name: "Korean", Script: ScriptHangul, DefaultVoice: "alloy"},
		{
			Code:         "ru",
			Name:         "Russian",
			Script:       ScriptCyrillic,
			DefaultVoice: "onyx",
			Tip: &Tip{
				Type:        "stress",
				Title:       "Find the stressed syllable",
				Description: "Russian vowels change sound when they are not stressed. Say the stressed syllable louder and longer.",
			},
		},
		{
			Code:         "ar",
			Name:         "Arabic",
			Script:       ScriptArabic,
			DefaultVoice: "onyx",
			Rules:        NormalizeRules{StripRanges: []RuneRange{{Lo: 0x064B, Hi: 0x065F}}},
		},
		{Code: "hi", Name: "Hindi", Script: ScriptDevanagari, DefaultVoice: "alloy"},
	}
}

// Default returns a registry of the built-in profiles.
func Default() *Registry {
	return NewRegistry(Builtin()...)
}
