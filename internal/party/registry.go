package party

// Console home screen groups.
const (
	GroupType     = "type"
	GroupInfo     = "info"
	GroupRelation = "relation"
)

func text(name, label string, required bool) Field {
	return Field{Name: name, Label: label, Kind: KindText, Required: required, Editable: true}
}

func date(name, label string, required bool) Field {
	return Field{Name: name, Label: label, Kind: KindDate, Required: required, Editable: true}
}

func intField(name, label string, required bool) Field {
	return Field{Name: name, Label: label, Kind: KindInt, Required: required, Editable: true}
}

func ref(name, label, target string, required bool) Field {
	return Field{Name: name, Label: label, Kind: KindRef, Ref: target, Required: required, Editable: true}
}

// parentRef is a reference fixed at creation time: list/create forms offer
// it, edit forms render it read-only.
func parentRef(name, label, target string) Field {
	return Field{Name: name, Label: label, Kind: KindRef, Ref: target, Required: true, Editable: false}
}

// typeTable covers the description-only lookup tables that dominate the
// party model.
func typeTable(name, slug, table string, deps ...Dependent) Descriptor {
	return Descriptor{
		Name:       name,
		Slug:       slug,
		Table:      table,
		Group:      GroupType,
		Lookup:     true,
		LabelField: "description",
		Fields:     []Field{text("description", "Description", true)},
		Dependents: deps,
	}
}

// classification covers the classify-by-X tables: a time-bounded link from a
// party to one classifying reference.
func classification(name, slug, table, refName, refLabel, refTarget string) Descriptor {
	return Descriptor{
		Name:  name,
		Slug:  slug,
		Table: table,
		Group: GroupInfo,
		Fields: []Field{
			date("fromdate", "From Date", true),
			date("thrudate", "Thru Date", false),
			intField("party_id", "Party", true),
			ref("party_type_id", "Party Type", "partytype", true),
			ref(refName, refLabel, refTarget, true),
		},
	}
}

// organization covers party subtypes that are organizations. The original
// model spreads these over party/organization/subtype tables; here each
// subtype table carries the observable payload and only the party supertype
// row is kept.
func organization(name, slug, table string, extra ...Field) Descriptor {
	fields := []Field{
		text("name_en", "Name (EN)", true),
		text("name_th", "Name (TH)", false),
	}
	fields = append(fields, extra...)
	return Descriptor{
		Name:       name,
		Slug:       slug,
		Table:      table,
		Group:      GroupInfo,
		Party:      true,
		LabelField: "name_en",
		Fields:     fields,
	}
}

var defaultRegistry = NewRegistry(
	// Lookup layer.
	typeTable("Gender Type", "gendertype", "gender_type",
		Dependent{Entity: "person", Column: "gender_type_id"}),
	typeTable("Marital Status Type", "maritalstatustype", "maritalstatustype",
		Dependent{Entity: "maritalstatus", Column: "maritalstatustype_id"}),
	typeTable("Person Name Type", "personnametype", "personnametype",
		Dependent{Entity: "personname", Column: "personnametype_id"}),
	typeTable("Physical Characteristic Type", "physicalcharacteristictype", "physicalcharacteristictype",
		Dependent{Entity: "physicalcharacteristic", Column: "physicalcharacteristictype_id"}),
	typeTable("Party Type", "partytype", "party_type",
		Dependent{Entity: "classifybyeeoc", Column: "party_type_id"},
		Dependent{Entity: "classifybyincome", Column: "party_type_id"},
		Dependent{Entity: "classifybyindustry", Column: "party_type_id"},
		Dependent{Entity: "classifybysize", Column: "party_type_id"},
		Dependent{Entity: "classifybyminority", Column: "party_type_id"}),
	typeTable("Income Range", "incomerange", "income_range",
		Dependent{Entity: "classifybyincome", Column: "income_range_id"}),
	typeTable("Employee Count Range", "employeecountrange", "employee_count_range",
		Dependent{Entity: "classifybysize", Column: "employee_count_range_id"}),
	typeTable("Priority Type", "prioritytype", "priority_type",
		Dependent{Entity: "partyrelationship", Column: "priority_type_id"}),
	typeTable("Role Type", "roletype", "role_type",
		Dependent{Entity: "partyrole", Column: "role_type_id"}),
	typeTable("Party Relationship Type", "partyrelationshiptype", "party_relationship_type",
		Dependent{Entity: "partyrelationship", Column: "party_relationship_type_id"}),
	typeTable("Party Relationship Status Type", "partyrelationshipstatustype", "party_relationship_status_type",
		Dependent{Entity: "partyrelationship", Column: "party_relationship_status_type_id"}),
	Descriptor{
		Name: "Industry Type", Slug: "industrytype", Table: "industry_type",
		Group: GroupType, Lookup: true, LabelField: "description",
		Fields: []Field{
			text("naics_code", "NAICS Code", true),
			text("description", "Description", true),
		},
		Dependents: []Dependent{{Entity: "classifybyindustry", Column: "industry_type_id"}},
	},
	Descriptor{
		Name: "Ethnicity", Slug: "ethnicity", Table: "ethnicity",
		Group: GroupType, Lookup: true, LabelField: "name_en",
		Fields: []Field{
			text("name_en", "Name (EN)", true),
			text("name_th", "Name (TH)", false),
		},
		Dependents: []Dependent{{Entity: "classifybyeeoc", Column: "ethnicity_id"}},
	},
	Descriptor{
		Name: "Minority Type", Slug: "minoritytype", Table: "minority_type",
		Group: GroupType, Lookup: true, LabelField: "name_en",
		Fields: []Field{
			text("name_en", "Name (EN)", true),
			text("name_th", "Name (TH)", false),
		},
		Dependents: []Dependent{{Entity: "classifybyminority", Column: "minority_type_id"}},
	},
	Descriptor{
		Name: "Country", Slug: "country", Table: "country",
		Group: GroupType, Lookup: true, LabelField: "name_en",
		Fields: []Field{
			text("isocode", "ISO Code", true),
			text("name_en", "Name (EN)", true),
			text("name_th", "Name (TH)", false),
		},
		Dependents: []Dependent{{Entity: "citizenship", Column: "country_id"}},
	},

	// Info layer.
	Descriptor{
		Name: "Person", Slug: "person", Table: "person",
		Group: GroupInfo, Party: true, LabelField: "personal_id_number",
		Fields: []Field{
			text("personal_id_number", "Personal ID Number", true),
			date("birthdate", "Birthdate", false),
			text("mothermaidenname", "Mother's Maiden Name", false),
			intField("totalyearworkexperience", "Total Years of Work Experience", false),
			text("comment", "Comment", false),
			ref("gender_type_id", "Gender Type", "gendertype", false),
		},
		Dependents: []Dependent{
			{Entity: "citizenship", Column: "person_id"},
			{Entity: "personname", Column: "person_id"},
			{Entity: "physicalcharacteristic", Column: "person_id"},
			{Entity: "maritalstatus", Column: "person_id"},
		},
	},
	Descriptor{
		Name: "Marital Status", Slug: "maritalstatus", Table: "maritalstatus",
		Group: GroupInfo,
		Fields: []Field{
			date("fromdate", "From Date", true),
			date("thrudate", "Thru Date", false),
			parentRef("person_id", "Person", "person"),
			ref("maritalstatustype_id", "Marital Status Type", "maritalstatustype", true),
		},
	},
	Descriptor{
		Name: "Person Name", Slug: "personname", Table: "personname",
		Group: GroupInfo, LabelField: "name",
		Fields: []Field{
			date("fromdate", "From Date", true),
			date("thrudate", "Thru Date", false),
			parentRef("person_id", "Person", "person"),
			ref("personnametype_id", "Person Name Type", "personnametype", true),
			text("name", "Name", true),
		},
	},
	Descriptor{
		Name: "Citizenship", Slug: "citizenship", Table: "citizenship",
		Group: GroupInfo,
		Fields: []Field{
			date("fromdate", "From Date", true),
			date("thrudate", "Thru Date", false),
			parentRef("person_id", "Person", "person"),
			ref("country_id", "Country", "country", true),
		},
		UniqueBy:   [][]string{{"person_id", "country_id", "fromdate", "thrudate"}},
		Dependents: []Dependent{{Entity: "passport", Column: "citizenship_id"}},
	},
	Descriptor{
		Name: "Passport", Slug: "passport", Table: "passport",
		Group: GroupInfo, LabelField: "passportnumber",
		Fields: []Field{
			text("passportnumber", "Passport Number", true),
			date("fromdate", "From Date", false),
			date("thrudate", "Thru Date", false),
			parentRef("citizenship_id", "Citizenship", "citizenship"),
		},
		UniqueBy: [][]string{{"passportnumber", "citizenship_id"}},
	},
	Descriptor{
		Name: "Physical Characteristic", Slug: "physicalcharacteristic", Table: "physicalcharacteristic",
		Group: GroupInfo,
		Fields: []Field{
			date("fromdate", "From Date", true),
			date("thrudate", "Thru Date", false),
			intField("val", "Value", true),
			parentRef("person_id", "Person", "person"),
			ref("physicalcharacteristictype_id", "Physical Characteristic Type", "physicalcharacteristictype", true),
		},
	},
	organization("Team", "team", "team"),
	organization("Family", "family", "family"),
	organization("Other Informal Organization", "otherinformalorganization", "other_informal_organization"),
	organization("Corporation", "corporation", "corporation",
		text("federal_tax_id_number", "Federal Tax ID Number", false)),
	organization("Government Agency", "governmentagency", "government_agency",
		text("federal_tax_id_number", "Federal Tax ID Number", false)),
	classification("Classify by EEOC", "classifybyeeoc", "classify_by_eeoc",
		"ethnicity_id", "Ethnicity", "ethnicity"),
	classification("Classify by Income", "classifybyincome", "classify_by_income",
		"income_range_id", "Income Range", "incomerange"),
	classification("Classify by Industry", "classifybyindustry", "classify_by_industry",
		"industry_type_id", "Industry Type", "industrytype"),
	classification("Classify by Size", "classifybysize", "classify_by_size",
		"employee_count_range_id", "Employee Count Range", "employeecountrange"),
	classification("Classify by Minority", "classifybyminority", "classify_by_minority",
		"minority_type_id", "Minority Type", "minoritytype"),

	// Relation layer.
	Descriptor{
		Name: "Party Role", Slug: "partyrole", Table: "party_role",
		Group: GroupRelation,
		Fields: []Field{
			intField("party_id", "Party", true),
			ref("role_type_id", "Role Type", "roletype", true),
			date("fromdate", "From Date", false),
			date("thrudate", "Thru Date", false),
		},
		Dependents: []Dependent{
			{Entity: "partyrelationship", Column: "from_party_role_id"},
			{Entity: "partyrelationship", Column: "to_party_role_id"},
		},
	},
	Descriptor{
		Name: "Party Relationship", Slug: "partyrelationship", Table: "party_relationship",
		Group: GroupRelation,
		Fields: []Field{
			date("from_date", "From Date", true),
			date("thru_date", "Thru Date", false),
			text("comment", "Comment", false),
			parentRef("from_party_role_id", "From Party Role", "partyrole"),
			parentRef("to_party_role_id", "To Party Role", "partyrole"),
			ref("party_relationship_type_id", "Relationship Type", "partyrelationshiptype", true),
			ref("priority_type_id", "Priority Type", "prioritytype", false),
			ref("party_relationship_status_type_id", "Status Type", "partyrelationshipstatustype", true),
		},
	},
)

// Default returns the built-in entity catalog.
func Default() *Registry { return defaultRegistry }
