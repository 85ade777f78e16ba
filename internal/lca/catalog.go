package lca

// Service descriptor values reported by the health endpoint.
const (
	ServiceName    = "LCA Assessment API"
	ServiceVersion = "1.0.0"
)

// Disclaimer accompanies every successful assessment.
const Disclaimer = "This assessment includes both verified data and hypothetical suggestions. " +
	"Please validate recommendations with industry experts before implementation."

// CatalogNote explains that the supported lists are examples only.
const CatalogNote = "The AI system can analyze any material or process. This list shows common examples."

// Features lists the capabilities advertised by the health endpoint.
var Features = []string{
	"Lifecycle Assessment Analysis",
	"AI-powered Impact Assessment",
	"Circularity Opportunities",
	"Alternative Methods Suggestions",
	"Reduction Recommendations",
}

// SupportedMaterials are common example materials. Any material is accepted.
var SupportedMaterials = []string{
	"Iron ore",
	"Copper ore",
	"Aluminum ore (Bauxite)",
	"Gold ore",
	"Silver ore",
	"Zinc ore",
	"Lead ore",
	"Nickel ore",
	"Platinum group metals",
	"Rare earth elements",
	"Coal",
	"Limestone",
	"Sand and gravel",
	"Steel",
	"Aluminum",
	"Copper",
}

// SupportedProcesses are common example processes. Any process is accepted.
var SupportedProcesses = []string{
	"Open-pit mining",
	"Underground mining",
	"Strip mining",
	"Placer mining",
	"Smelting",
	"Refining",
	"Electrowinning",
	"Flotation",
	"Magnetic separation",
	"Gravity separation",
	"Leaching",
	"Roasting",
	"Sintering",
	"Pelletizing",
}
