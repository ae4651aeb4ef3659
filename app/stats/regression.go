package stats

import (
	"math"
)

// singularPivot is the pivot magnitude below which the normal equations are
// treated as singular.
const singularPivot = 1e-10

// Linear is a least-squares line fit.
type Linear struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// At evaluates the line at x.
func (l Linear) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// LinearRegression fits y = slope*x + intercept in closed form.
// Fewer than two points, or points sharing a single x, give ok == false.
func LinearRegression(points [][2]float64) (Linear, bool) {
	if len(points) < 2 {
		return Linear{}, false
	}
	n := float64(len(points))
	var sx, sy, sxy, sxx float64
	for _, p := range points {
		sx += p[0]
		sy += p[1]
		sxy += p[0] * p[1]
		sxx += p[0] * p[0]
	}
	denom := n*sxx - sx*sx
	if denom == 0 {
		return Linear{}, false
	}
	slope := (n*sxy - sx*sy) / denom
	intercept := (sy - slope*sx) / n

	fit := Linear{Slope: slope, Intercept: intercept}
	fit.RSquared = rSquared(points, fit.At)
	return fit, true
}

// Polynomial is a least-squares polynomial fit. Coefficients[i] multiplies x^i.
type Polynomial struct {
	Coefficients []float64
	RSquared     float64
}

// At evaluates the polynomial at x.
func (p Polynomial) At(x float64) float64 {
	y := 0.0
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		y = y*x + p.Coefficients[i]
	}
	return y
}

// PolynomialRegression solves the (order+1)x(order+1) normal equations by
// Gaussian elimination with partial pivoting. Order 0 fits the mean of y.
// It gives ok == false for a negative order, fewer than order+1 points or a
// pivot near zero.
func PolynomialRegression(points [][2]float64, order int) (Polynomial, bool) {
	if order < 0 || len(points) < order+1 {
		return Polynomial{}, false
	}
	size := order + 1

	// Augmented matrix [A | b] with A[i][j] = sum x^(i+j), b[i] = sum x^i * y
	m := make([][]float64, size)
	for i := range m {
		m[i] = make([]float64, size+1)
	}
	for _, p := range points {
		for i := 0; i < size; i++ {
			xi := math.Pow(p[0], float64(i))
			for j := 0; j < size; j++ {
				m[i][j] += xi * math.Pow(p[0], float64(j))
			}
			m[i][size] += xi * p[1]
		}
	}

	for col := 0; col < size; col++ {
		pivot := col
		for row := col + 1; row < size; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < singularPivot {
			return Polynomial{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < size; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k <= size; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	coeffs := make([]float64, size)
	for i := size - 1; i >= 0; i-- {
		sum := m[i][size]
		for j := i + 1; j < size; j++ {
			sum -= m[i][j] * coeffs[j]
		}
		coeffs[i] = sum / m[i][i]
	}

	fit := Polynomial{Coefficients: coeffs}
	fit.RSquared = rSquared(points, fit.At)
	return fit, true
}

// rSquared is 1 - SSres/SStot; a constant y gives 0.
func rSquared(points [][2]float64, predict func(float64) float64) float64 {
	var meanY float64
	for _, p := range points {
		meanY += p[1]
	}
	meanY /= float64(len(points))

	var ssTot, ssRes float64
	for _, p := range points {
		d := p[1] - meanY
		ssTot += d * d
		r := p[1] - predict(p[0])
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
