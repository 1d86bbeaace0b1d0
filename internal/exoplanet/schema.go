package exoplanet

// TableName is the relation written by ingestion and read by the query facade.
const TableName = "exoplanets"

type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	default:
		return "unknown"
	}
}

type Column struct {
	Raw     string
	Display string
	Kind    Kind
}

// Display names used by the query builder.
const (
	ColPlanetName      = "Planet Name"
	ColHostName        = "Host Name"
	ColDiscoveryMethod = "Discovery Method"
	ColDiscoveryYear   = "Discovery Year"
	ColStarCount       = "Number of Stars"
	ColPlanetCount     = "Number of Planets"
	ColOrbitalPeriod   = "Orbital Period [days]"
	ColSemiMajorAxis   = "Orbit Semi-Major Axis [au]"
	ColPlanetRadius    = "Planet Radius [Earth Radius]"
	ColPlanetMass      = "Planet Mass or Mass*sin(i) [Earth Mass]"
	ColEccentricity    = "Eccentricity"
	ColInsolationFlux  = "Insolation Flux [Earth Flux]"
	ColEquilibriumTemp = "Equilibrium Temperature [K]"
	ColSpectralType    = "Spectral Type"
	ColStellarTemp     = "Stellar Effective Temperature [K]"
	ColStellarRadius   = "Stellar Radius [Solar Radius]"
	ColStellarMass     = "Stellar Mass [Solar mass]"

	// ColHostVMag is a filter target only; ingestion does not produce it.
	ColHostVMag = "Host Star V mag"
)

var columns = []Column{
	{Raw: "pl_name", Display: ColPlanetName, Kind: KindText},
	{Raw: "hostname", Display: ColHostName, Kind: KindText},
	{Raw: "discoverymethod", Display: ColDiscoveryMethod, Kind: KindText},
	{Raw: "disc_year", Display: ColDiscoveryYear, Kind: KindInteger},
	{Raw: "sy_snum", Display: ColStarCount, Kind: KindInteger},
	{Raw: "sy_pnum", Display: ColPlanetCount, Kind: KindInteger},
	{Raw: "pl_orbper", Display: ColOrbitalPeriod, Kind: KindReal},
	{Raw: "pl_orbsmax", Display: ColSemiMajorAxis, Kind: KindReal},
	{Raw: "pl_rade", Display: ColPlanetRadius, Kind: KindReal},
	{Raw: "pl_bmasse", Display: ColPlanetMass, Kind: KindReal},
	{Raw: "pl_orbeccen", Display: ColEccentricity, Kind: KindReal},
	{Raw: "pl_insol", Display: ColInsolationFlux, Kind: KindReal},
	{Raw: "pl_eqt", Display: ColEquilibriumTemp, Kind: KindReal},
	{Raw: "st_spectype", Display: ColSpectralType, Kind: KindText},
	{Raw: "st_teff", Display: ColStellarTemp, Kind: KindReal},
	{Raw: "st_rad", Display: ColStellarRadius, Kind: KindReal},
	{Raw: "st_mass", Display: ColStellarMass, Kind: KindReal},
}

var displayIndex = func() map[string]int {
	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[column.Display] = i
	}
	return index
}()

// Columns returns the raw to display mapping in table order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

func RawNames() []string {
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, column.Raw)
	}
	return names
}

func DisplayNames() []string {
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, column.Display)
	}
	return names
}

func LookupDisplay(name string) (Column, bool) {
	i, ok := displayIndex[name]
	if !ok {
		return Column{}, false
	}
	return columns[i], true
}

func IsKnownColumn(name string) bool {
	_, ok := displayIndex[name]
	return ok
}
