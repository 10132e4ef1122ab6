package devserver

import (
	"context"
	"fmt"

	"github.com/killallgit/menudata/pkg/vectorstore"
)

const corpusCollection = "menus"

type menuEntry struct {
	id     string
	text   string
	source string
}

// Each entry leads with the dish it describes so short questions land on it
var menuCorpus = []menuEntry{
	{
		id:     "green-slice-vegan",
		text:   "Vegan pizza at Green Slice: vegan margherita pizza with cashew mozzarella. Brooklyn, NY. $14.",
		source: "https://menudata.example/restaurants/green-slice",
	},
	{
		id:     "thai-orchid-pad-thai",
		text:   "Pad Thai at Thai Orchid: rice noodles with tamarind, peanuts and egg. Pad Thai jay is the vegan version. Queens, NY. $13.",
		source: "https://menudata.example/restaurants/thai-orchid",
	},
	{
		id:     "tonys-pineapple",
		text:   "Pizza with pineapple at Tony's: Hawaiian pizza, pineapple, ham, mozzarella. Hoboken, NJ. $16.",
		source: "https://menudata.example/restaurants/tonys",
	},
	{
		id:     "nonna-dough",
		text:   "Make pizza at home: pizza dough recipe from Nonna's Kitchen. Make the dough, stretch, top and bake the pizza hot.",
		source: "https://menudata.example/recipes/nonna-pizza-dough",
	},
	{
		id:     "sakura-sushi",
		text:   "Sushi at Sakura: salmon nigiri, tuna maki and a vegetable sushi platter. Jersey City, NJ. $22.",
		source: "https://menudata.example/restaurants/sakura",
	},
	{
		id:     "el-farolito-tacos",
		text:   "Tacos at El Farolito: al pastor tacos with pineapple salsa, carnitas tacos, horchata. San Francisco, CA. $4 each.",
		source: "https://menudata.example/restaurants/el-farolito",
	},
	{
		id:     "menya-ramen",
		text:   "Ramen at Menya: tonkotsu ramen, miso ramen with corn and butter, vegan shoyu ramen. Seattle, WA. $17.",
		source: "https://menudata.example/restaurants/menya",
	},
	{
		id:     "cedar-falafel",
		text:   "Falafel at Cedar Grill: falafel wrap with tahini, hummus plate, fattoush salad. Dearborn, MI. $11.",
		source: "https://menudata.example/restaurants/cedar-grill",
	},
	{
		id:     "pho-saigon",
		text:   "Pho at Saigon House: beef pho with rare steak and brisket, tofu pho for vegetarians. Houston, TX. $12.",
		source: "https://menudata.example/restaurants/saigon-house",
	},
	{
		id:     "smash-burger",
		text:   "Burgers at Patty Shack: double smash burger, fries, vanilla milkshake, plant based burger. Austin, TX. $15.",
		source: "https://menudata.example/restaurants/patty-shack",
	},
}

// MenuCorpus returns the built-in menu documents
func MenuCorpus() []vectorstore.Document {
	docs := make([]vectorstore.Document, len(menuCorpus))
	for i, entry := range menuCorpus {
		docs[i] = vectorstore.Document{
			ID:       entry.id,
			Content:  entry.text,
			Metadata: map[string]string{vectorstore.SourceKey: entry.source},
		}
	}
	return docs
}

// LoadCorpus indexes docs into a fresh collection
func LoadCorpus(ctx context.Context, embedder vectorstore.Embedder, docs []vectorstore.Document) (*vectorstore.Collection, error) {
	col, err := vectorstore.NewCollection(corpusCollection, embedder)
	if err != nil {
		return nil, err
	}
	if err := col.AddDocuments(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to index menu corpus: %w", err)
	}
	return col, nil
}
