package inbound

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/clinical/usecase"
	"github.com/ogerihealth/healthrecord/internal/pkg/router"
)

type uc interface {
	BPRecord(ctx context.Context, in usecase.BPRecordInput) (*usecase.BPReadingOutput, error)
	BPList(ctx context.Context, in usecase.BPListInput) (*usecase.BPListOutput, error)
	BPDetail(ctx context.Context, in usecase.BPDetailInput) (*usecase.BPReadingOutput, error)
	BPUpdate(ctx context.Context, in usecase.BPUpdateInput) error
	BPStats(ctx context.Context, in usecase.BPStatsInput) (*usecase.BPStatsOutput, error)
	BPAuthorize(ctx context.Context, in usecase.BPAuthorizeInput) (*usecase.BPAuthorizeOutput, error)
	BPRecordForPatient(ctx context.Context, in usecase.BPRecordForPatientInput) (*usecase.BPReadingOutput, error)

	ConsultationCreate(ctx context.Context, in usecase.ConsultationCreateInput) (*usecase.ConsultationOutput, error)
	ConsultationUpdate(ctx context.Context, in usecase.ConsultationUpdateInput) error
	ConsultationList(ctx context.Context, in usecase.ConsultationListInput) (*usecase.ConsultationListOutput, error)

	MedicationAdd(ctx context.Context, in usecase.MedicationAddInput) (*usecase.MedicationOutput, error)
	MedicationList(ctx context.Context, in usecase.MedicationListInput) (*usecase.MedicationListOutput, error)

	HWProfileUpsert(ctx context.Context, in usecase.HWProfileUpsertInput) error
	HWProfileGet(ctx context.Context, in usecase.HWProfileGetInput) (*usecase.HWProfileOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Blood pressure
	r.POST("/api/v1/clinical/bp", end.BPRecord)
	r.GET("/api/v1/clinical/bp", end.BPList)
	r.GET("/api/v1/clinical/bp-stats", end.BPStats)
	r.GET("/api/v1/clinical/bp/:id", end.BPDetail)
	r.PUT("/api/v1/clinical/bp/:id", end.BPUpdate)
	r.POST("/api/v1/clinical/bp/authorize", end.BPAuthorize)
	r.POST("/api/v1/clinical/bp/record-for-patient", end.BPRecordForPatient)

	// Consultations
	r.POST("/api/v1/clinical/consultations", end.ConsultationCreate)
	r.GET("/api/v1/clinical/consultations", end.ConsultationList)
	r.PUT("/api/v1/clinical/consultations/:id", end.ConsultationUpdate)

	// Medication history
	r.POST("/api/v1/clinical/medications", end.MedicationAdd)
	r.GET("/api/v1/clinical/medications", end.MedicationList)

	// Health worker profile
	r.PUT("/api/v1/clinical/worker-profile", end.HWProfileUpsert)
	r.GET("/api/v1/clinical/worker-profile/:id", end.HWProfileGet)
}
