package categorization

import (
	"sort"
	"strings"
)

// FallbackCategory is the catch-all label auto-provisioned when nothing
// else resolves.
const FallbackCategory = "Прочее"

// vocabulary binds one canonical category label to its per-language
// keyword lists. Declaration order is the tie-break order for scoring
// and for the auto-provision scan.
type vocabulary struct {
	label string
	words map[string][]string // language code -> keywords
}

var vocabularies = []vocabulary{
	{
		label: "Продукты",
		words: map[string][]string{
			"ru": {
				"хлеб", "молоко", "мясо", "рыба", "овощи", "фрукты", "сыр",
				"колбаса", "курица", "говядина", "свинина", "творог", "йогурт",
				"масло", "сахар", "соль", "мука", "рис", "гречка", "макароны",
				"картофель", "лук", "морковь", "капуста", "помидоры", "огурцы",
				"яблоки", "бананы", "апельсины", "лимоны", "виноград", "ягоды",
				"крупа", "консервы", "паста", "спагетти", "пельмени",
			},
			"uz": {
				"non", "sut", "go'sht", "baliq", "sabzavot", "meva", "pishloq",
				"kolbasa", "tovuq", "mol go'shti", "cho'chqa go'shti", "tvorog",
				"yog'urt", "yog'", "shakar", "tuz", "un", "guruch", "grechka",
				"makaron", "kartoshka", "piyoz", "sabzi", "karam", "pomidor",
				"bodring", "olma", "banan", "apelsin", "limon", "uzum",
			},
			"en": {
				"bread", "milk", "meat", "fish", "vegetables", "fruits", "cheese",
				"sausage", "chicken", "beef", "pork", "cottage", "yogurt",
				"butter", "sugar", "salt", "flour", "rice", "buckwheat", "pasta",
				"potato", "onion", "carrot", "cabbage", "tomato", "cucumber",
				"apple", "banana", "orange", "lemon", "grape", "berry",
			},
		},
	},
	{
		label: "Напитки",
		words: map[string][]string{
			"ru": {
				"вода", "сок", "чай", "кофе", "пиво", "вино", "водка", "коньяк",
				"лимонад", "газировка", "кола", "пепси", "спрайт", "энергетик",
				"квас", "компот", "морс", "коктейль", "виски", "ром", "текила",
			},
			"uz": {
				"suv", "sharbat", "choy", "qahva", "pivo", "vino", "vodka",
				"konyak", "limonad", "gazlangan", "kola", "pepsi", "energetik",
				"kompot", "mors", "kokteyl",
			},
			"en": {
				"water", "juice", "tea", "coffee", "beer", "wine", "vodka",
				"cognac", "lemonade", "soda", "cola", "pepsi", "sprite",
				"energy", "kvass", "cocktail", "whiskey", "rum", "tequila",
			},
		},
	},
	{
		label: "Транспорт",
		words: map[string][]string{
			"ru": {
				"бензин", "дизель", "топливо", "автобус", "метро", "такси",
				"трамвай", "троллейбус", "маршрутка", "парковка", "штраф",
				"техосмотр", "страховка", "ремонт", "шины", "масло", "запчасти",
			},
			"uz": {
				"benzin", "dizel", "yoqilg'i", "avtobus", "metro", "taksi",
				"tramvay", "trolleybus", "marshrut", "parking", "jarima",
				"ta'mir", "shinalar", "moy", "ehtiyot qismlar",
			},
			"en": {
				"gasoline", "diesel", "fuel", "bus", "metro", "taxi",
				"tram", "parking", "fine", "repair", "tires", "oil",
				"parts", "insurance",
			},
		},
	},
	{
		label: "Развлечения",
		words: map[string][]string{
			"ru": {
				"кино", "театр", "концерт", "ресторан", "кафе", "бар", "клуб",
				"боулинг", "бильярд", "караоке", "игры", "парк", "зоопарк",
				"музей", "выставка", "цирк", "аквапарк", "казино", "кальян",
			},
			"uz": {
				"kino", "teatr", "konsert", "restoran", "kafe", "bar", "klub",
				"bouling", "bilyard", "karaoke", "o'yinlar", "park", "hayvonot bog'i",
				"muzey", "ko'rgazma", "sirk", "akvapark", "kazino", "kalyan",
			},
			"en": {
				"cinema", "theater", "concert", "restaurant", "cafe", "bar",
				"club", "bowling", "billiard", "karaoke", "games", "park",
				"zoo", "museum", "exhibition", "circus", "aquapark", "casino",
			},
		},
	},
	{
		label: "Одежда",
		words: map[string][]string{
			"ru": {
				"рубашка", "брюки", "джинсы", "платье", "юбка", "куртка",
				"пальто", "обувь", "ботинки", "кроссовки", "туфли", "сапоги",
				"носки", "белье", "футболка", "свитер", "шорты", "костюм",
				"шляпа", "кепка", "перчатки", "шарф", "ремень", "сумка",
			},
			"uz": {
				"ko'ylak", "shim", "jinsi", "yubka", "kurtka",
				"palto", "oyoq kiyim", "botinka", "krossovka", "tufli",
				"paypoq", "ich kiyim", "futbolka", "sviter", "shorts",
				"kostyum", "shlyapa", "kepka", "qo'lqop", "sharf", "kamar",
			},
			"en": {
				"shirt", "pants", "jeans", "dress", "skirt", "jacket",
				"coat", "shoes", "boots", "sneakers", "socks", "underwear",
				"t-shirt", "sweater", "shorts", "suit", "hat", "cap",
				"gloves", "scarf", "belt", "bag",
			},
		},
	},
	{
		label: "Здоровье",
		words: map[string][]string{
			"ru": {
				"лекарства", "таблетки", "сироп", "мазь", "врач", "стоматолог",
				"анализы", "операция", "больница", "поликлиника", "аптека",
				"витамины", "лечение", "массаж", "физиотерапия", "рентген",
			},
			"uz": {
				"dori", "tabletkalar", "sirop", "malham", "shifokor", "stomatolog",
				"tahlillar", "operatsiya", "kasalxona", "poliklinika", "dorixona",
				"vitaminlar", "davolash", "massaj", "fizioterapiya",
			},
			"en": {
				"medicine", "pills", "syrup", "ointment", "doctor", "dentist",
				"analysis", "operation", "hospital", "pharmacy", "vitamins",
				"treatment", "massage", "physiotherapy", "x-ray",
			},
		},
	},
	{
		label: "Коммунальные услуги",
		words: map[string][]string{
			"ru": {
				"электричество", "газ", "вода", "отопление", "интернет",
				"телефон", "мобильная связь", "кабельное", "телевидение",
				"домофон", "охрана", "уборка", "лифт", "управляющая",
			},
			"uz": {
				"elektr", "gaz", "suv", "isitish", "internet", "telefon",
				"mobil aloqa", "kabel", "televideniye", "domofon", "qo'riqchi",
				"tozalash", "lift", "boshqaruvchi",
			},
			"en": {
				"electricity", "gas", "water", "heating", "internet",
				"phone", "mobile", "cable", "television", "cleaning",
				"elevator", "management",
			},
		},
	},
	{
		label: "Образование",
		words: map[string][]string{
			"ru": {
				"книги", "учебники", "тетради", "ручки", "карандаши",
				"курсы", "университет", "школа", "репетитор", "экзамен",
				"семинар", "тренинг", "конференция", "лекция",
			},
			"uz": {
				"kitoblar", "darsliklar", "daftarlar", "ruchkalar", "qalamlar",
				"kurslar", "universitet", "maktab", "repetitor", "imtihon",
				"seminar", "trening", "konferensiya", "ma'ruza",
			},
			"en": {
				"books", "textbooks", "notebooks", "pens", "pencils",
				"courses", "university", "school", "tutor", "exam",
				"seminar", "training", "conference", "lecture",
			},
		},
	},
}

// shopVocabulary maps shop-name substrings to a category label.
type shopVocabulary struct {
	label string
	shops []string
}

var shopVocabularies = []shopVocabulary{
	{
		label: "Продукты",
		shops: []string{
			"korzinka", "makro", "carrefour", "havas", "супермаркет",
			"продуктовый", "гастроном", "универсам", "магнум",
		},
	},
	{
		label: "Одежда",
		shops: []string{
			"zara", "h&m", "uniqlo", "adidas", "nike", "lcwaikiki",
			"defacto", "colin's", "mango", "massimo dutti",
		},
	},
	{
		label: "Развлечения",
		shops: []string{
			"cinemapark", "kinomax", "aura", "next", "cosmo", "пицца",
			"burger", "kfc", "mcdonalds", "subway", "starbucks",
		},
	},
	{
		label: "Здоровье",
		shops: []string{
			"аптека", "дориха", "pharmacy", "farmatsiya", "zdorovye",
		},
	},
	{
		label: "Транспорт",
		shops: []string{
			"газпром", "лукойл", "узгазойл", "заправка", "азс",
		},
	},
}

// allWords flattens the per-language lists in language-key order,
// preserving the order keywords were declared in.
func (v vocabulary) allWords() []string {
	var all []string
	for _, lang := range []string{"ru", "uz", "en"} {
		all = append(all, v.words[lang]...)
	}
	return all
}

// score counts how many item tokens hit any keyword of this vocabulary,
// as a fraction of the token count. A token hits on equality or on
// substring containment in either direction.
func (v vocabulary) score(itemWords []string) float64 {
	if len(itemWords) == 0 {
		return 0
	}
	all := v.allWords()
	matches := 0
	for _, word := range itemWords {
		for _, kw := range all {
			if word == kw || strings.Contains(word, kw) || strings.Contains(kw, word) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(itemWords))
}

// SuggestedCategories returns the canonical labels in declaration order.
// Used to propose starter categories to users who have none of them yet.
func SuggestedCategories() []string {
	labels := make([]string, 0, len(vocabularies))
	for _, v := range vocabularies {
		labels = append(labels, v.label)
	}
	return labels
}

// CategoryKeywords returns the sorted, deduplicated keyword set for a
// canonical label, or nil for an unknown label.
func CategoryKeywords(label string) []string {
	for _, v := range vocabularies {
		if v.label != label {
			continue
		}
		seen := make(map[string]struct{})
		var out []string
		for _, kw := range v.allWords() {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
		sort.Strings(out)
		return out
	}
	return nil
}
