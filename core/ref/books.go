package ref

import "strings"

// book identifies one canonical book by its OSIS ID and Paratext code.
type book struct {
	OSIS     string
	Paratext string
	Name     string
}

// books is indexed by canonical book number (1-based; index 0 unused).
var books = []book{
	{},
	{"Gen", "GEN", "Genesis"}, {"Exod", "EXO", "Exodus"}, {"Lev", "LEV", "Leviticus"},
	{"Num", "NUM", "Numbers"}, {"Deut", "DEU", "Deuteronomy"}, {"Josh", "JOS", "Joshua"},
	{"Judg", "JDG", "Judges"}, {"Ruth", "RUT", "Ruth"}, {"1Sam", "1SA", "1 Samuel"},
	{"2Sam", "2SA", "2 Samuel"}, {"1Kgs", "1KI", "1 Kings"}, {"2Kgs", "2KI", "2 Kings"},
	{"1Chr", "1CH", "1 Chronicles"}, {"2Chr", "2CH", "2 Chronicles"}, {"Ezra", "EZR", "Ezra"},
	{"Neh", "NEH", "Nehemiah"}, {"Esth", "EST", "Esther"}, {"Job", "JOB", "Job"},
	{"Ps", "PSA", "Psalms"}, {"Prov", "PRO", "Proverbs"}, {"Eccl", "ECC", "Ecclesiastes"},
	{"Song", "SNG", "Song of Songs"}, {"Isa", "ISA", "Isaiah"}, {"Jer", "JER", "Jeremiah"},
	{"Lam", "LAM", "Lamentations"}, {"Ezek", "EZK", "Ezekiel"}, {"Dan", "DAN", "Daniel"},
	{"Hos", "HOS", "Hosea"}, {"Joel", "JOL", "Joel"}, {"Amos", "AMO", "Amos"},
	{"Obad", "OBA", "Obadiah"}, {"Jonah", "JON", "Jonah"}, {"Mic", "MIC", "Micah"},
	{"Nah", "NAM", "Nahum"}, {"Hab", "HAB", "Habakkuk"}, {"Zeph", "ZEP", "Zephaniah"},
	{"Hag", "HAG", "Haggai"}, {"Zech", "ZEC", "Zechariah"}, {"Mal", "MAL", "Malachi"},
	{"Matt", "MAT", "Matthew"}, {"Mark", "MRK", "Mark"}, {"Luke", "LUK", "Luke"},
	{"John", "JHN", "John"}, {"Acts", "ACT", "Acts"}, {"Rom", "ROM", "Romans"},
	{"1Cor", "1CO", "1 Corinthians"}, {"2Cor", "2CO", "2 Corinthians"}, {"Gal", "GAL", "Galatians"},
	{"Eph", "EPH", "Ephesians"}, {"Phil", "PHP", "Philippians"}, {"Col", "COL", "Colossians"},
	{"1Thess", "1TH", "1 Thessalonians"}, {"2Thess", "2TH", "2 Thessalonians"}, {"1Tim", "1TI", "1 Timothy"},
	{"2Tim", "2TI", "2 Timothy"}, {"Titus", "TIT", "Titus"}, {"Phlm", "PHM", "Philemon"},
	{"Heb", "HEB", "Hebrews"}, {"Jas", "JAS", "James"}, {"1Pet", "1PE", "1 Peter"},
	{"2Pet", "2PE", "2 Peter"}, {"1John", "1JN", "1 John"}, {"2John", "2JN", "2 John"},
	{"3John", "3JN", "3 John"}, {"Jude", "JUD", "Jude"}, {"Rev", "REV", "Revelation"},
}

// bookLookup maps lower-cased OSIS IDs, Paratext codes and names (spaces
// removed) to book numbers.
var bookLookup = func() map[string]int {
	m := make(map[string]int, len(books)*3)
	for i, b := range books {
		if i == 0 {
			continue
		}
		m[strings.ToLower(b.OSIS)] = i
		m[strings.ToLower(b.Paratext)] = i
		m[strings.ToLower(strings.ReplaceAll(b.Name, " ", ""))] = i
	}
	return m
}()

// BookNumber returns the canonical number of a book given its OSIS ID,
// Paratext code or English name.
func BookNumber(name string) (int, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	n, ok := bookLookup[key]
	return n, ok
}

// BookID returns the OSIS ID for a canonical book number, or "" if the
// number is out of range.
func BookID(n int) string {
	if n <= 0 || n >= len(books) {
		return ""
	}
	return books[n].OSIS
}

// BookCount is the number of books in the canonical order.
func BookCount() int {
	return len(books) - 1
}
