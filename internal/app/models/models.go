package models

import "time"

type AddressRecord struct {
	ID              string    `json:"_id"`
	Address         string    `json:"ip"`
	ReversedAddress string    `json:"reversedIp"`
	CreatedAt       time.Time `json:"createdAt"`
}

type APIReverseIPRequest struct {
	IP string `json:"ip"`
}

type APIReverseIPResponse struct {
	IP         string `json:"ip"`
	ReversedIP string `json:"reversedIp"`
}

type APIMessageResponse struct {
	Message string `json:"message"`
}

type APIErrorResponse struct {
	Error string `json:"error"`
}

type APIReadyResponse struct {
	Status string `json:"status"`
}

type APILookupResponse struct {
	IP         string   `json:"ip"`
	ReversedIP string   `json:"reversedIp"`
	Arpa       string   `json:"arpa"`
	Names      []string `json:"names"`
	Country    string   `json:"country,omitempty"`
}
