package efficiency

// BucketTotal is the hours attributed to one strategic category.
type BucketTotal struct {
	Bucket     Bucket
	Hours      float64
	PctOfTotal float64
}

// BucketResult holds bucket totals in BucketOrder plus the per-initiative
// split (PerInitiative[i][b]) they were summed from.
type BucketResult struct {
	Totals        []BucketTotal
	PerInitiative [][]float64
}

// Classify splits each initiative's total savings S_i across buckets by its
// weights: bucket[b] += S_i * w_b / 100. Percentages are of the grand total
// and are all zero when nothing was saved.
func Classify(initiativeSavings []float64, initiatives []Initiative) BucketResult {
	res := BucketResult{
		Totals:        make([]BucketTotal, len(BucketOrder)),
		PerInitiative: make([][]float64, len(initiatives)),
	}
	for b, bucket := range BucketOrder {
		res.Totals[b].Bucket = bucket
	}
	for i, in := range initiatives {
		split := make([]float64, len(BucketOrder))
		for b, bucket := range BucketOrder {
			split[b] = initiativeSavings[i] * in.Buckets.Of(bucket) / 100
			res.Totals[b].Hours += split[b]
		}
		res.PerInitiative[i] = split
	}

	var grand float64
	for _, t := range res.Totals {
		grand += t.Hours
	}
	if grand != 0 {
		for b := range res.Totals {
			res.Totals[b].PctOfTotal = res.Totals[b].Hours / grand * 100
		}
	}
	return res
}

// ClassifyRoles splits each role's savings across buckets. A role's savings
// in a phase are attributed to initiatives in proportion to their
// contribution to that phase, then split by each initiative's weights.
// Result[r][b] follows the role order and BucketOrder; with weights summing
// to 100 each row sums to the role's total savings.
func ClassifyRoles(pr PhaseResult, rr RoleResult, initiatives []Initiative) [][]float64 {
	out := make([][]float64, len(rr.Savings))
	for r := range rr.Savings {
		out[r] = make([]float64, len(BucketOrder))
	}
	for p := range PhaseOrder {
		var total float64
		for i := range initiatives {
			total += pr.Contributions[i][p]
		}
		if total == 0 {
			continue
		}
		for r, row := range rr.Savings {
			if row[p] == 0 {
				continue
			}
			for i, in := range initiatives {
				share := row[p] * pr.Contributions[i][p] / total
				for b, bucket := range BucketOrder {
					out[r][b] += share * in.Buckets.Of(bucket) / 100
				}
			}
		}
	}
	return out
}
