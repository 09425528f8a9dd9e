package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// StockActual es el total en mano del producto en toda la empresa, no solo el bucket que recibe.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.IsNegative() {
		stockActual = decimal.Zero
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// AssemblyUnitCost costo unitario de un kit: suma de costo de componente por cantidad por kit.
func AssemblyUnitCost(components map[string]decimal.Decimal, costs map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for productID, qty := range components {
		total = total.Add(costs[productID].Mul(qty))
	}
	return total.Round(4)
}
