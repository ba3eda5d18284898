package domain

import "slices"

// Cities is the fixed list a user can pick as their city.
var Cities = []string{
	"Casablanca",
	"Rabat",
	"Marrakech",
	"Fès",
	"Tangier",
	"Agadir",
	"Meknès",
	"Oujda",
	"Kenitra",
	"Tétouan",
	"Salé",
	"Temara",
	"Safi",
	"Khouribga",
	"Jadida",
	"Settat",
	"Mohammedia",
	"Larache",
	"Ksar El Kebir",
	"Guelmim",
}

// Trades is the fixed vocabulary of service categories.
var Trades = []string{
	"Plombier",
	"Électricien",
	"Menuisier",
	"Peintre",
	"Maçon",
	"Carreleur",
	"Mécanicien",
	"Jardinier",
	"Serrurier",
	"Couvreur",
	"Vitrier",
	"Climatiseur",
	"Tapissier",
	"Parqueteur",
	"Soudeur",
}

func IsKnownCity(city string) bool {
	return slices.Contains(Cities, city)
}

func IsKnownTrade(trade string) bool {
	return slices.Contains(Trades, trade)
}
