package main

import "math"

// --- Glicko-2 constants & helpers (paper values) ---
const (
	g2Scale = 173.7178          // rating scale between r<->mu
	q       = math.Ln10 / 400.0 // q = ln(10)/400
	pi2     = math.Pi * math.Pi
)

// Glicko2 holds the public 1500-scale values (not mu/phi). The trainer rates
// the player against a low-RD reference opponent pinned at the book rating.
type Glicko2 struct {
	Rating     float64 // r (default 1500)
	RD         float64 // rating deviation (default 350)
	Volatility float64 // sigma (default 0.06)
	Rounds     int     // rating-period updates applied
}

// NewGlicko2 returns a fresh player at the standard defaults.
func NewGlicko2() *Glicko2 {
	return &Glicko2{Rating: 1500, RD: 350, Volatility: 0.06}
}

// NewGlicko2With seeds specific starting values (e.g. restored from store).
func NewGlicko2With(r, rd, sigma float64) *Glicko2 {
	return &Glicko2{Rating: r, RD: rd, Volatility: sigma}
}

// bookOpponent is the fixed reference the player is scored against. The
// small RD keeps it from drifting the update.
func bookOpponent() *Glicko2 { return &Glicko2{Rating: bookRating, RD: 50, Volatility: 0.06} }

// --- internal conversions r/RD <-> mu/phi ---
func toMuPhi(r, rd float64) (mu, phi float64)   { return (r - 1500.0) / g2Scale, rd / g2Scale }
func fromMuPhi(mu, phi float64) (r, rd float64) { return mu*g2Scale + 1500.0, phi * g2Scale }

func gFn(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*q*q*phi*phi/pi2) }
func gExp(mu, muj, phij float64) float64 {
	return 1.0 / (1.0 + math.Exp(-gFn(phij)*(mu-muj)))
}

// Age applies the no-games-this-period step: RD grows with volatility.
func (a *Glicko2) Age() {
	muA, phiA := toMuPhi(a.Rating, a.RD)
	phiStar := math.Sqrt(phiA*phiA + a.Volatility*a.Volatility)
	a.Rating, a.RD = fromMuPhi(muA, phiStar)
	a.Rounds++
}

// UpdateVsBook treats one settled round as a single-opponent rating period
// against the book. S in [0,1] is the round's adherence score.
func (a *Glicko2) UpdateVsBook(S, tau float64) {
	opp := bookOpponent()
	muA, phiA := toMuPhi(a.Rating, a.RD)
	muB, phiB := toMuPhi(opp.Rating, opp.RD)

	gB := gFn(phiB)
	Eab := gExp(muA, muB, phiB)
	sumG2E := (gB * gB) * Eab * (1.0 - Eab)
	sumGSE := gB * (S - Eab)

	v := 1.0 / (q * q * sumG2E)
	delta := v * q * sumGSE

	if math.Abs(delta) < 1e-12 {
		phiStar := math.Sqrt(phiA*phiA + a.Volatility*a.Volatility)
		phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
		muNew := muA + (phiNew*phiNew)*q*sumGSE
		a.Rating, a.RD = fromMuPhi(muNew, phiNew)
		a.Rounds++
		return
	}

	// Solve for new volatility via the paper's f(x)=0 root finder.
	a2 := math.Log(a.Volatility * a.Volatility)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phiA*phiA - v - ex)
		den := 2.0 * (phiA*phiA + v + ex) * (phiA*phiA + v + ex)
		return (num / den) - (x-a2)/(tau*tau)
	}

	A := a2
	var B float64
	if delta*delta > phiA*phiA+v {
		B = math.Log(delta*delta - phiA*phiA - v)
	} else {
		k := 1.0
		for f(a2-k) < 0 && k < 1e6 {
			k *= 2.0
		}
		B = a2 - k
	}
	fA := f(A)
	fB := f(B)

	for it := 0; it < 60 && math.Abs(B-A) > 1e-6; it++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			break
		}
		if fC*fB < 0 {
			A = B
			fA = fB
		}
		B = C
		fB = fC
	}

	newVol := math.Exp(B / 2.0)
	phiStar := math.Sqrt(phiA*phiA + newVol*newVol)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muNew := muA + (phiNew*phiNew)*q*sumGSE

	a.Rating, a.RD = fromMuPhi(muNew, phiNew)
	a.Volatility = newVol
	a.Rounds++
}
