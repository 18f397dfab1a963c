package archive

// Category is one of the newspaper sections the reader knows about.
type Category string

const (
	FrontPage       Category = "front-page"
	National        Category = "national"
	Business        Category = "business"
	BackPage        Category = "back-page"
	Editorial       Category = "editorial"
	Sport           Category = "sport"
	OtherVoices     Category = "other-voices"
	Letters         Category = "letters"
	BooksAuthors    Category = "books-authors"
	BusinessFinance Category = "business-finance"
	SundayMagazine  Category = "sunday-magazine"
	Icon            Category = "icon"
	International   Category = "international"
	YoungWorld      Category = "young-world"
)

const (
	defaultLimit  = 5
	featuredLimit = 3
)

// AllCategories returns every known category in navigation order.
func AllCategories() []Category {
	return []Category{
		FrontPage, National, Business, International, Sport, Editorial,
		BackPage, OtherVoices, Letters, BooksAuthors, BusinessFinance,
		YoungWorld, SundayMagazine, Icon,
	}
}

// ParseCategory maps a section key to its Category. Unknown keys report false.
// The scraper's legacy "sunday-magzine" key resolves to SundayMagazine.
func ParseCategory(key string) (Category, bool) {
	if key == "sunday-magzine" {
		return SundayMagazine, true
	}
	for _, c := range AllCategories() {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// Label is the heading shown above the category's stories.
func (c Category) Label() string {
	switch c {
	case FrontPage:
		return "Front Page"
	case National:
		return "National"
	case Business:
		return "Business"
	case BackPage:
		return "Back Page"
	case Editorial:
		return "Editorial"
	case Sport:
		return "Sports"
	case OtherVoices:
		return "Other Voices"
	case Letters:
		return "Letters"
	case BooksAuthors:
		return "Books & Authors"
	case BusinessFinance:
		return "Business & Finance"
	case SundayMagazine:
		return "Sunday Magazine"
	case Icon:
		return "Icon"
	case International:
		return "International"
	case YoungWorld:
		return "Young World"
	}
	return string(c)
}

// Limit is the maximum number of stories returned for the category.
// In featured mode every category is capped at three.
func (c Category) Limit(featured bool) int {
	var n int
	switch c {
	case FrontPage:
		n = 4
	case National:
		n = 3
	case Business:
		n = 8
	case BackPage, Editorial:
		n = 5
	case Sport, OtherVoices, Letters, BooksAuthors, BusinessFinance,
		SundayMagazine, Icon, International, YoungWorld:
		n = defaultLimit
	default:
		return 0
	}
	if featured && n > featuredLimit {
		n = featuredLimit
	}
	return n
}

// keys lists the document keys a category reads from, in lookup order.
func (c Category) keys() []string {
	if c == SundayMagazine {
		return []string{string(SundayMagazine), "sunday-magzine"}
	}
	return []string{string(c)}
}
