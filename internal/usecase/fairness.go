package usecase

// rerankByArtisanDiversity переставляет кандидатов так, чтобы ни один мастер
// не появился в выдаче второй раз, пока каждый представленный мастер не
// появился хотя бы один раз. Внутри группы одного мастера и внутри раунда
// сохраняется порядок по дистанции. Чистая перестановка: кандидаты не
// добавляются и не удаляются.
func rerankByArtisanDiversity(candidates []candidate) []candidate {
	if len(candidates) < 2 {
		return candidates
	}

	// Группировка по мастеру в порядке первого появления,
	// внутри группы — исходный (дистанционный) порядок.
	order := make([]string, 0, len(candidates))
	groups := make(map[string][]candidate, len(candidates))
	for _, c := range candidates {
		artisan := c.card.ArtisanID
		if _, ok := groups[artisan]; !ok {
			order = append(order, artisan)
		}
		groups[artisan] = append(groups[artisan], c)
	}

	if len(order) == len(candidates) {
		return candidates // все мастера уникальны, переставлять нечего
	}

	// Round-robin по группам: раунд 1 — лучший кандидат каждого мастера,
	// раунд 2 — вторые кандидаты, и так далее.
	result := make([]candidate, 0, len(candidates))
	for round := 0; len(result) < len(candidates); round++ {
		for _, artisan := range order {
			group := groups[artisan]
			if round < len(group) {
				result = append(result, group[round])
			}
		}
	}

	return result
}
