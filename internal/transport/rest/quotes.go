package rest

import (
	"net/http"
)

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	channel := channelOf(r.URL.Query().Get("channel"))
	brand := brandOf(channel, r.URL.Query().Get("brand"))

	Success(w, "", h.quotes.Rates(channel, brand))
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	in, err := ValidateSimulateRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	Success(w, "", h.quotes.Simulate(*in))
}

func (h *Handler) clubQuote(w http.ResponseWriter, r *http.Request) {
	in, err := ValidateClubQuoteRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	Success(w, "", h.quotes.ClubQuote(*in))
}
