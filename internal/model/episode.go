package model

// Canonical field names for a raw SIGESA episode record. The ingestion adapter
// normalizes spreadsheet headers to these names; unmapped columns are dropped
// before the record reaches the core.
const (
	FieldEpisodeNumber    = "episodio"
	FieldPatientID        = "rut_paciente"
	FieldPatientName      = "nombre_paciente"
	FieldAdmissionDate    = "fecha_ingreso"
	FieldDischargeDate    = "fecha_alta"
	FieldAdmissionService = "servicio_ingreso"
	FieldDischargeService = "servicio_alta"
	FieldPlanCode         = "codigo_plan"
	FieldPlanSubCode      = "subcodigo_plan"
	FieldPlanDescription  = "descripcion_plan"
	FieldDRGCode          = "ir_grd"
	FieldMeanWeight       = "peso_medio"
	FieldStayDays         = "dias_estada"
	FieldDelayDays        = "dias_demora"
	FieldDischargeType    = "tipo_alta"
)

// AllFields lists the canonical field names in export column order.
var AllFields = []string{
	FieldEpisodeNumber,
	FieldPatientID,
	FieldPatientName,
	FieldAdmissionDate,
	FieldDischargeDate,
	FieldAdmissionService,
	FieldDischargeService,
	FieldPlanCode,
	FieldPlanSubCode,
	FieldPlanDescription,
	FieldDRGCode,
	FieldMeanWeight,
	FieldStayDays,
	FieldDelayDays,
	FieldDischargeType,
}

// RawEpisode is one clinical episode as exported by SIGESA, after header
// normalization. All values are carried as raw text; coercion to dates and
// numbers happens field-by-field in the pricing engine, where a bad value
// degrades only the derived field that needs it.
type RawEpisode struct {
	EpisodeNumber    string
	PatientID        string
	PatientName      string
	AdmissionDate    string
	DischargeDate    string
	AdmissionService string
	DischargeService string
	PlanCode         string
	PlanSubCode      string
	PlanDescription  string
	DRGCode          string
	MeanWeight       string
	StayDays         string
	DelayDays        string
	DischargeType    string
}

// FromRecord builds a RawEpisode from a canonical key→value mapping, the form
// the ingestion adapter hands over. Missing keys leave fields empty.
func FromRecord(rec map[string]string) RawEpisode {
	return RawEpisode{
		EpisodeNumber:    rec[FieldEpisodeNumber],
		PatientID:        rec[FieldPatientID],
		PatientName:      rec[FieldPatientName],
		AdmissionDate:    rec[FieldAdmissionDate],
		DischargeDate:    rec[FieldDischargeDate],
		AdmissionService: rec[FieldAdmissionService],
		DischargeService: rec[FieldDischargeService],
		PlanCode:         rec[FieldPlanCode],
		PlanSubCode:      rec[FieldPlanSubCode],
		PlanDescription:  rec[FieldPlanDescription],
		DRGCode:          rec[FieldDRGCode],
		MeanWeight:       rec[FieldMeanWeight],
		StayDays:         rec[FieldStayDays],
		DelayDays:        rec[FieldDelayDays],
		DischargeType:    rec[FieldDischargeType],
	}
}
