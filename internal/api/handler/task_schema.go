package handler

import (
	"time"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

type createTaskRequest struct {
	LayananID        string `json:"layanan_id" validate:"required"`
	Judul            string `json:"judul" validate:"required"`
	DetailPermintaan string `json:"detail_permintaan" validate:"required"`
}

type inputEstimasiRequest struct {
	EstimasiJam int64 `json:"estimasi_jam" validate:"required,gt=0"`
}

type assignPartnerRequest struct {
	PartnerID         string    `json:"partner_id" validate:"required"`
	ScopeKerja        string    `json:"scope_kerja" validate:"required"`
	Deadline          time.Time `json:"deadline"`
	LinkDriveInternal string    `json:"link_drive_internal"`
	JamEfektif        int64     `json:"jam_efektif" validate:"required,gt=0"`
	LevelPartner      string    `json:"level_partner"`
}

type responPartnerRequest struct {
	Accept bool `json:"accept"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type taskResponse struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	LayananID        string `json:"layanan_id"`
	Judul            string `json:"judul"`
	DetailPermintaan string `json:"detail_permintaan"`
	EstimasiJam      int64  `json:"estimasi_jam,omitempty"`
	JamReserved      int64  `json:"jam_reserved"`
	CreatedAt        string `json:"created_at"`
}

type taskClientViewResponse struct {
	ID               string               `json:"id"`
	Status           string               `json:"status"`
	LayananID        string               `json:"layanan_id"`
	Judul            string               `json:"judul"`
	DetailPermintaan string               `json:"detail_permintaan"`
	EstimasiJam      int64                `json:"estimasi_jam,omitempty"`
	LinkDriveClient  string               `json:"link_drive_client,omitempty"`
	InternalData     *domain.InternalData `json:"internal_data,omitempty"`
}

type settlementResponse struct {
	TaskID             string `json:"task_id"`
	JamDibakar         int64  `json:"jam_dibakar"`
	JumlahBayar        int64  `json:"jumlah_bayar"`
	PlatformFee        int64  `json:"platform_fee"`
	PartnerFee         int64  `json:"partner_fee"`
	PartnerReferralFee int64  `json:"partner_referral_fee"`
	SettledAt          string `json:"settled_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:               t.ID,
		Status:           string(t.Status),
		LayananID:        t.LayananID,
		Judul:            t.Judul,
		DetailPermintaan: t.DetailPermintaan,
		EstimasiJam:      t.EstimasiJam,
		JamReserved:      t.JamReserved,
		CreatedAt:        t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toClientViewResponse(v ports.TaskClientView, includeInternal bool) taskClientViewResponse {
	resp := taskClientViewResponse{
		ID:               v.ID,
		Status:           v.Status,
		LayananID:        v.LayananID,
		Judul:            v.Judul,
		DetailPermintaan: v.DetailPermintaan,
		EstimasiJam:      v.EstimasiJam,
		LinkDriveClient:  v.LinkDriveClient,
	}
	if includeInternal {
		resp.InternalData = v.InternalData
	}
	return resp
}

func toSettlementResponse(r *domain.FinancialResult) settlementResponse {
	return settlementResponse{
		TaskID:             r.TaskID,
		JamDibakar:         r.JamDibakar,
		JumlahBayar:        r.JumlahBayar,
		PlatformFee:        r.PlatformFee,
		PartnerFee:         r.PartnerFee,
		PartnerReferralFee: r.PartnerReferralFee,
		SettledAt:          r.SettledAt.UTC().Format(time.RFC3339),
	}
}
