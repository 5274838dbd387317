package catalog

// 规范（法语）目录数据。conception 与 realisation 两套平行结构，
// 分区字母编号按约定各自独立命名（不做强制）。

var conceptionSections = []Section{
	{
		ID:    "A",
		Title: "Études préalables",
		Items: []Subsection{
			{ID: "A1", Title: "Faisabilité", Tasks: []string{
				"Étude de faisabilité",
				"Analyse du site",
			}},
			{ID: "A2", Title: "Programme", Tasks: []string{
				"Programme fonctionnel",
				"Budget prévisionnel",
			}},
		},
	},
	{
		ID:    "B",
		Title: "Avant-projet",
		Items: []Subsection{
			{ID: "B1", Title: "Esquisse", Tasks: []string{
				"Plans d'esquisse",
				"Notice descriptive",
			}},
			{ID: "B2", Title: "Avant-projet définitif", Tasks: []string{
				"Plans APD",
				"Estimation définitive",
			}},
		},
	},
	{
		ID:    "C",
		Title: "Autorisations",
		Items: []Subsection{
			{ID: "C1", Title: "Permis de construire", Tasks: []string{
				"Dossier de permis de construire",
				"Suivi de l'instruction",
			}},
		},
	},
	{
		ID:    "D",
		Title: "Consultation des entreprises",
		Items: []Subsection{
			{ID: "D1", Title: "Dossier de consultation", Tasks: []string{
				"Cahier des charges",
				"Plans DCE",
			}},
			{ID: "D2", Title: "Analyse des offres", Tasks: []string{
				"Rapport d'analyse des offres",
				"Mise au point des marchés",
			}},
		},
	},
}

var realisationSections = []Section{
	{
		ID:    "A",
		Title: "Préparation de chantier",
		Items: []Subsection{
			{ID: "A1", Title: "Installation", Tasks: []string{
				"Plan d'installation de chantier",
				"Levé topographique",
			}},
			{ID: "A2", Title: "Études d'exécution", Tasks: []string{
				"Plans d'exécution",
				"Planning des travaux",
			}},
		},
	},
	{
		ID:    "B",
		Title: "Gros œuvre",
		Items: []Subsection{
			{ID: "B1", Title: "Fondations", Tasks: []string{
				"Relevé des fondations",
				"Contrôle du béton",
			}},
			{ID: "B2", Title: "Structure", Tasks: []string{
				"Élévation des murs",
				"Dalles et planchers",
			}},
		},
	},
	{
		ID:    "C",
		Title: "Second œuvre",
		Items: []Subsection{
			{ID: "C1", Title: "Clos et couvert", Tasks: []string{
				"Charpente",
				"Couverture",
			}},
			{ID: "C2", Title: "Lots techniques", Tasks: []string{
				"Électricité",
				"Plomberie",
			}},
		},
	},
	{
		ID:    "D",
		Title: "Réception",
		Items: []Subsection{
			{ID: "D1", Title: "Livraison", Tasks: []string{
				"Opérations préalables à la réception",
				"Levée des réserves",
			}},
		},
	},
}

// translations 译文表，按自然键平行索引：
// "phase.section" → 分区标题；"phase.section.sub" → 子分区标题；
// "phase.section.sub.<规范任务名>" → 任务名译文
var translations = map[string]map[string]string{
	LangEN: {
		"conception.A":    "Preliminary studies",
		"conception.A.A1": "Feasibility",
		"conception.A.A1.Étude de faisabilité": "Feasibility study",
		"conception.A.A1.Analyse du site":      "Site analysis",
		"conception.A.A2":                      "Brief",
		"conception.A.A2.Programme fonctionnel": "Functional brief",
		"conception.A.A2.Budget prévisionnel":   "Provisional budget",
		"conception.B":    "Preliminary design",
		"conception.B.B1": "Sketch design",
		"conception.B.B1.Plans d'esquisse":    "Sketch plans",
		"conception.B.B1.Notice descriptive":  "Descriptive notice",
		"conception.B.B2":                     "Detailed preliminary design",
		"conception.B.B2.Plans APD":           "Detailed design plans",
		"conception.B.B2.Estimation définitive": "Final cost estimate",
		"conception.C":    "Permits",
		"conception.C.C1": "Building permit",
		"conception.C.C1.Dossier de permis de construire": "Building permit file",
		"conception.C.C1.Suivi de l'instruction":          "Permit review follow-up",
		"conception.D":    "Contractor consultation",
		"conception.D.D1": "Tender documents",
		"conception.D.D1.Cahier des charges": "Specifications",
		"conception.D.D1.Plans DCE":          "Tender plans",
		"conception.D.D2":                    "Bid analysis",
		"conception.D.D2.Rapport d'analyse des offres": "Bid analysis report",
		"conception.D.D2.Mise au point des marchés":    "Contract finalisation",
		"realisation.A":    "Site preparation",
		"realisation.A.A1": "Site setup",
		"realisation.A.A1.Plan d'installation de chantier": "Site installation plan",
		"realisation.A.A1.Levé topographique":              "Topographic survey",
		"realisation.A.A2":                                 "Execution studies",
		"realisation.A.A2.Plans d'exécution":   "Execution plans",
		"realisation.A.A2.Planning des travaux": "Works schedule",
		"realisation.B":    "Structural works",
		"realisation.B.B1": "Foundations",
		"realisation.B.B1.Relevé des fondations": "Foundation survey",
		"realisation.B.B1.Contrôle du béton":     "Concrete inspection",
		"realisation.B.B2":                       "Structure",
		"realisation.B.B2.Élévation des murs":    "Wall elevation",
		"realisation.B.B2.Dalles et planchers":   "Slabs and floors",
		"realisation.C":    "Finishing works",
		"realisation.C.C1": "Weathertight envelope",
		"realisation.C.C1.Charpente":  "Roof framing",
		"realisation.C.C1.Couverture": "Roofing",
		"realisation.C.C2":            "Technical trades",
		"realisation.C.C2.Électricité": "Electricity",
		"realisation.C.C2.Plomberie":   "Plumbing",
		"realisation.D":    "Handover",
		"realisation.D.D1": "Delivery",
		"realisation.D.D1.Opérations préalables à la réception": "Pre-handover inspections",
		"realisation.D.D1.Levée des réserves":                   "Punch list clearance",
	},
}
