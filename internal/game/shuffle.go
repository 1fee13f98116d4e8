package game

import "math/rand"

// shuffleSection permutes indices in place, swapping each position i with a uniform pick from [i, n).
func shuffleSection(rnd *rand.Rand, indices []int) {
	for i := range indices {
		j := i + rnd.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
}

// sectionOrders builds one shuffled group of multiple-choice indices per full section.
func sectionOrders(rnd *rand.Rand, questionCount, sectionSize int) [][]int {
	if sectionSize <= 0 {
		return nil
	}
	sections := questionCount / sectionSize
	orders := make([][]int, 0, sections)
	for section := 0; section < sections; section++ {
		indices := make([]int, sectionSize)
		for i := range indices {
			indices[i] = section*sectionSize + i
		}
		shuffleSection(rnd, indices)
		orders = append(orders, indices)
	}
	return orders
}
