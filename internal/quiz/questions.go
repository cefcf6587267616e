package quiz

import (
	"math/rand"
)

type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyMedium      Difficulty = "medium"
	DifficultyHard        Difficulty = "hard"
	DifficultyApocalyptic Difficulty = "apocalyptic"
)

// Question is one catalog entry. Options always has four entries and
// CorrectIndex points into it.
type Question struct {
	ID           string     `json:"id"`
	Difficulty   Difficulty `json:"difficulty"`
	Text         string     `json:"question"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
}

// Catalog is a fixed, read-only question bank.
type Catalog struct {
	questions []Question
}

func NewCatalog() *Catalog {
	return &Catalog{questions: defaultQuestions}
}

// Random returns one question drawn uniformly from the catalog.
func (c *Catalog) Random() Question {
	return c.questions[rand.Intn(len(c.questions))]
}

func (c *Catalog) Len() int {
	return len(c.questions)
}

var defaultQuestions = []Question{
	{
		ID:           "q1",
		Difficulty:   DifficultyEasy,
		Text:         "Quem construiu a arca?",
		Options:      []string{"Moisés", "Noé", "Abraão", "Davi"},
		CorrectIndex: 1,
	},
	{
		ID:           "q2",
		Difficulty:   DifficultyEasy,
		Text:         "Em quantos dias Deus criou o mundo, segundo Gênesis?",
		Options:      []string{"3", "6", "7", "40"},
		CorrectIndex: 1,
	},
	{
		ID:           "q3",
		Difficulty:   DifficultyEasy,
		Text:         "Quem derrotou o gigante Golias?",
		Options:      []string{"Saul", "Sansão", "Davi", "Josué"},
		CorrectIndex: 2,
	},
	{
		ID:           "q4",
		Difficulty:   DifficultyMedium,
		Text:         "Quantos discípulos Jesus escolheu como apóstolos?",
		Options:      []string{"10", "11", "12", "13"},
		CorrectIndex: 2,
	},
	{
		ID:           "q5",
		Difficulty:   DifficultyMedium,
		Text:         "Qual apóstolo negou Jesus três vezes?",
		Options:      []string{"João", "Pedro", "Tomé", "Judas"},
		CorrectIndex: 1,
	},
	{
		ID:           "q6",
		Difficulty:   DifficultyMedium,
		Text:         "Quantos livros tem o Novo Testamento?",
		Options:      []string{"24", "25", "27", "39"},
		CorrectIndex: 2,
	},
	{
		ID:           "q7",
		Difficulty:   DifficultyHard,
		Text:         "Qual profeta enfrentou os profetas de Baal no Monte Carmelo?",
		Options:      []string{"Isaías", "Jeremias", "Elias", "Ezequiel"},
		CorrectIndex: 2,
	},
	{
		ID:           "q8",
		Difficulty:   DifficultyHard,
		Text:         "Quem foi o rei que viu a escrita na parede?",
		Options:      []string{"Nabucodonosor", "Belsazar", "Dario", "Ciro"},
		CorrectIndex: 1,
	},
	{
		ID:           "q9",
		Difficulty:   DifficultyHard,
		Text:         "Qual era a profissão de Lucas, autor do terceiro evangelho?",
		Options:      []string{"Pescador", "Cobrador de impostos", "Médico", "Carpinteiro"},
		CorrectIndex: 2,
	},
	{
		ID:           "q10",
		Difficulty:   DifficultyApocalyptic,
		Text:         "Quantas igrejas são mencionadas no Apocalipse (capítulos 2 e 3)?",
		Options:      []string{"5", "6", "7", "8"},
		CorrectIndex: 2,
	},
	{
		ID:           "q11",
		Difficulty:   DifficultyApocalyptic,
		Text:         "Em qual ilha João recebeu a revelação do Apocalipse?",
		Options:      []string{"Chipre", "Creta", "Patmos", "Malta"},
		CorrectIndex: 2,
	},
	{
		ID:           "q12",
		Difficulty:   DifficultyApocalyptic,
		Text:         "Quantos selos tem o livro descrito no Apocalipse 5?",
		Options:      []string{"4", "6", "7", "12"},
		CorrectIndex: 2,
	},
}
