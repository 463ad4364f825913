package dto

import "weaveit-pipeline/domain"

type GenerateContentRequest struct {
	Script           string `json:"script" binding:"required"`
	Title            string `json:"title"`
	OutputType       string `json:"outputType"`
	ContentID        string `json:"contentId"`
	PaymentSignature string `json:"paymentSignature"`
	WalletAddress    string `json:"walletAddress"`
}

type GenerateContentResponse struct {
	ContentID        string               `json:"contentId"`
	OutputType       domain.OutputType    `json:"outputType"`
	Title            string               `json:"title"`
	StatusURL        string               `json:"statusUrl"`
	EstimatedMinutes int                  `json:"estimatedMinutes"`
	ScriptQuality    domain.ScriptQuality `json:"scriptQuality"`
}

type EstimateRequest struct {
	Script string `json:"script" binding:"required"`
}

type EstimateResponse struct {
	Words            int                  `json:"words"`
	EstimatedMinutes int                  `json:"estimatedMinutes"`
	ScriptQuality    domain.ScriptQuality `json:"scriptQuality"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
