// internal/words/words.go
package words

import "math/rand"

// Pair couples the crewmates' word with the impostors' word for one round.
type Pair struct {
	MainWord     string `json:"mainWord"`
	ImpostorWord string `json:"impostorWord"`
}

// Dictionary is a fixed table of word pairs sampled uniformly at random.
type Dictionary struct {
	pairs []Pair
}

// NewDictionary returns the built-in dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{pairs: defaultPairs}
}

// NewDictionaryFromPairs builds a dictionary over a caller-supplied table.
// Used by tests to pin the sampled pair.
func NewDictionaryFromPairs(pairs []Pair) *Dictionary {
	return &Dictionary{pairs: pairs}
}

// Sample returns one pair chosen uniformly from the table.
func (d *Dictionary) Sample() Pair {
	return d.pairs[rand.Intn(len(d.pairs))]
}

var defaultPairs = []Pair{
	{"Désinfectant", "Hôpital"},
	{"Stéthoscope", "Ambulance"},
	{"Scalpel", "Chirurgien"},
	{"Vaccin", "Seringue"},
	{"Radiographie", "Fracture"},
	{"Casserole", "Restaurant"},
	{"Couteau", "Planche à découper"},
	{"Four", "Boulangerie"},
	{"Réfrigérateur", "Congélateur"},
	{"Assiette", "Fourchette"},
	{"Craie", "Tableau noir"},
	{"Cartable", "Bibliothèque"},
	{"Diplôme", "Université"},
	{"Stylo", "Cahier"},
	{"Cloche", "Récréation"},
	{"Volant", "Garage"},
	{"Essence", "Station-service"},
	{"Pneu", "Crevaison"},
	{"Clignotant", "Rétroviseur"},
	{"Coffre", "Bagages"},
	{"Oreiller", "Lit"},
	{"Réveil", "Alarme"},
	{"Armoire", "Cintre"},
	{"Lampe", "Interrupteur"},
	{"Miroir", "Salle de bain"},
	{"Ballon", "Stade"},
	{"Sifflet", "Arbitre"},
	{"Maillot", "Vestiaire"},
	{"Médaille", "Podium"},
	{"Chronomètre", "Record"},
	{"Pinceau", "Toile"},
	{"Palette", "Musée"},
	{"Sculpture", "Galerie"},
	{"Chevalet", "Atelier"},
	{"Vernissage", "Exposition"},
	{"Clavier", "Souris"},
	{"Écran", "Projecteur"},
	{"Serveur", "Réseau"},
	{"Imprimante", "Scanner"},
	{"Câble", "Prise"},
	{"Billets", "Guichet"},
	{"Quai", "Locomotive"},
	{"Wagon", "Rails"},
	{"Horaire", "Retard"},
	{"Contrôleur", "Ticket"},
	{"Ancre", "Port"},
	{"Voile", "Mât"},
	{"Bouée", "Naufrage"},
	{"Phare", "Côte"},
	{"Gouvernail", "Capitaine"},
}
