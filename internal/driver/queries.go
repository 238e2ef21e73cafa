package driver

const (
	SaveOntologyQuery = `
		MERGE (o:Ontology {uuid: $uuid})
		SET o.name = $name,
			o.run_uuid = $run_uuid,
			o.role = $role,
			o.model_kind = $model_kind,
			o.created_at = $created_at
		RETURN o.uuid AS uuid
	`

	SaveEntitiesQuery = `
		UNWIND $rows AS row
		MERGE (n:OntologyEntity {ontology_uuid: $ontology_uuid, key: row.key})
		SET n.kind = row.kind,
			n.value = row.value,
			n.is_class = row.is_class,
			n.label = row.label,
			n.class_index = row.class_index
		RETURN count(n) AS saved
	`

	SaveTriplesQuery = `
		UNWIND $rows AS row
		MATCH (a:OntologyEntity {ontology_uuid: $ontology_uuid, key: row.a})
		MATCH (b:OntologyEntity {ontology_uuid: $ontology_uuid, key: row.b})
		MERGE (a)-[e:TRIPLE {predicate: row.predicate}]-(b)
		RETURN count(e) AS saved
	`

	SaveAlignmentRunQuery = `
		MERGE (r:AlignmentRun {uuid: $uuid})
		SET r.created_at = $created_at,
			r.threshold = $threshold,
			r.source_uuid = $source_uuid,
			r.target_uuid = $target_uuid,
			r.true_positives = $true_positives,
			r.accuracy = $accuracy,
			r.recall = $recall,
			r.f_measure = $f_measure,
			r.defined = $defined
		RETURN r.uuid AS uuid
	`

	SaveCorrespondencesQuery = `
		UNWIND $rows AS row
		MATCH (s:OntologyEntity {ontology_uuid: $source_uuid, key: row.source_key})
		MATCH (t:OntologyEntity {ontology_uuid: $target_uuid, key: row.target_key})
		MERGE (s)-[c:ALIGNED_WITH {run_uuid: $run_uuid}]->(t)
		SET c.similarity = row.similarity,
			c.source_index = row.source_index,
			c.target_index = row.target_index
		RETURN count(c) AS saved
	`

	GetRunCorrespondencesQuery = `
		MATCH (s:OntologyEntity)-[c:ALIGNED_WITH {run_uuid: $run_uuid}]->(t:OntologyEntity)
		RETURN s.value AS source_iri, t.value AS target_iri, c.similarity AS similarity,
			c.source_index AS source_index, c.target_index AS target_index
		ORDER BY c.source_index, c.target_index
	`
)
